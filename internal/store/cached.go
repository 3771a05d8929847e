package store

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/moolen/fitaura/internal/agent"
)

// CacheStats reports profile cache effectiveness.
type CacheStats struct {
	Items   int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// Cached puts an LRU in front of a Store's profile reads. Concurrent misses
// for the same user share one backend load. History calls pass through.
type Cached struct {
	Store

	cache *lru.Cache[string, agent.Profile]
	loads singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCached wraps next with a profile cache of the given size.
func NewCached(next Store, size int) (*Cached, error) {
	cache, err := lru.New[string, agent.Profile](size)
	if err != nil {
		return nil, fmt.Errorf("store: create profile cache: %w", err)
	}
	return &Cached{Store: next, cache: cache}, nil
}

// Get implements ProfileStore.
func (c *Cached) Get(ctx context.Context, userID string) (agent.Profile, error) {
	if p, ok := c.cache.Get(userID); ok {
		c.hits.Add(1)
		return p.Clone(), nil
	}
	c.misses.Add(1)

	// The shared load must outlive any one caller; each caller still
	// gives up on its own ctx.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.loads.DoChan(userID, func() (interface{}, error) {
		p, err := c.Store.Get(loadCtx, userID)
		if err != nil {
			return nil, err
		}
		// A concurrent Put may already have cached a newer value.
		c.cache.ContainsOrAdd(userID, p)
		return p, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(agent.Profile).Clone(), nil
	}
}

// Put implements ProfileStore. The cache is updated only after the backend
// write succeeds.
func (c *Cached) Put(ctx context.Context, userID string, profile agent.Profile) error {
	if err := c.Store.Put(ctx, userID, profile); err != nil {
		return err
	}
	c.cache.Add(userID, profile.Clone())
	return nil
}

// Stats returns a snapshot of cache counters.
func (c *Cached) Stats() CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	stats := CacheStats{Items: c.cache.Len(), Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}
