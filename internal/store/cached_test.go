package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/fitaura/internal/agent"
)

type countingStore struct {
	*Memory
	gets  atomic.Int32
	delay time.Duration
	err   error
}

func (c *countingStore) Get(ctx context.Context, userID string) (agent.Profile, error) {
	c.gets.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.Memory.Get(ctx, userID)
}

func TestCached_HitsAndMisses(t *testing.T) {
	backend := &countingStore{Memory: NewMemory()}
	require.NoError(t, backend.Memory.Put(context.Background(), "alice", agent.Profile{"age": 29}))

	c, err := NewCached(backend, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p, err := c.Get(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, 29, p["age"])
	}

	assert.Equal(t, int32(1), backend.gets.Load())
	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 0.001)
}

func TestCached_PutRefreshesCache(t *testing.T) {
	backend := &countingStore{Memory: NewMemory()}
	c, err := NewCached(backend, 2)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Get(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, c.Put(ctx, "alice", agent.Profile{"age": 30}))
	p, err := c.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 30, p["age"])
	assert.Equal(t, int32(1), backend.gets.Load())

	assert.ErrorIs(t, c.Put(ctx, "", agent.Profile{}), ErrInvalidUserID)
}

func TestCached_ConcurrentMissesShareLoad(t *testing.T) {
	backend := &countingStore{Memory: NewMemory(), delay: 50 * time.Millisecond}
	c, err := NewCached(backend, 2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(context.Background(), "alice")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, backend.gets.Load(), int32(10))
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	boom := errors.New("disk gone")
	backend := &countingStore{Memory: NewMemory(), err: boom}
	c, err := NewCached(backend, 2)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "alice")
	assert.ErrorIs(t, err, boom)

	backend.err = nil
	_, err = c.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int32(2), backend.gets.Load())
}

func TestNewCached_InvalidSize(t *testing.T) {
	_, err := NewCached(NewMemory(), 0)
	assert.Error(t, err)
}

// blockingStore holds Get until release is closed or ctx is done.
type blockingStore struct {
	*Memory
	gets    atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Get(ctx context.Context, userID string) (agent.Profile, error) {
	if b.gets.Add(1) == 1 {
		close(b.entered)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.release:
	}
	return b.Memory.Get(ctx, userID)
}

func TestCached_CancelledCallerDoesNotFailOthers(t *testing.T) {
	backend := &blockingStore{
		Memory:  NewMemory(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	require.NoError(t, backend.Memory.Put(context.Background(), "alice", agent.Profile{"age": 29}))
	c, err := NewCached(backend, 2)
	require.NoError(t, err)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Get(ctxA, "alice")
		errA <- err
	}()
	<-backend.entered

	type result struct {
		profile agent.Profile
		err     error
	}
	resB := make(chan result, 1)
	go func() {
		p, err := c.Get(context.Background(), "alice")
		resB <- result{p, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(backend.release)
	select {
	case r := <-resB:
		require.NoError(t, r.err)
		assert.Equal(t, 29, r.profile["age"])
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, int32(1), backend.gets.Load())
}
