package reasoning

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	backend string
	err     error
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) ObserveCompletion(backend string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{backend: backend, err: err})
}

func TestInstrumented_RecordsCalls(t *testing.T) {
	rec := &fakeRecorder{}
	fail := errors.New("nope")
	calls := 0
	svc := Instrument(Func(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if prompt == "bad" {
			return "", fail
		}
		return "ok:" + prompt, nil
	}), "fake", WithRecorder(rec))

	text, err := svc.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok:hi", text)

	_, err = svc.Complete(context.Background(), "bad")
	assert.ErrorIs(t, err, fail)

	assert.Equal(t, 2, calls)
	require.Len(t, rec.calls, 2)
	assert.Equal(t, "fake", rec.calls[0].backend)
	assert.NoError(t, rec.calls[0].err)
	assert.ErrorIs(t, rec.calls[1].err, fail)
}

func TestInstrumented_Timeout(t *testing.T) {
	svc := Instrument(Func(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), "slow", WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := svc.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
