package audit

import (
	"context"
	"sync"
	"time"

	"github.com/quartzmkt/resolver-core/pkg/cache"
	"github.com/quartzmkt/resolver-core/pkg/types"
)

// CachingStorage decorates a Storage with a bounded, short-TTL recent-event
// window per series, backing a /status/history endpoint without requiring
// a round trip to the underlying storage backend.
type CachingStorage struct {
	inner      Storage
	cache      cache.Cache
	ttl        time.Duration
	maxHistory int

	mu     sync.Mutex
	recent map[string][]Event
}

// NewCachingStorage wraps inner with a recent-history cache. ttl bounds
// how long an individual event stays in the short-TTL cache; maxHistory
// bounds how many events per series are kept for RecentEvents.
func NewCachingStorage(inner Storage, c cache.Cache, ttl time.Duration, maxHistory int) *CachingStorage {
	return &CachingStorage{
		inner:      inner,
		cache:      c,
		ttl:        ttl,
		maxHistory: maxHistory,
		recent:     make(map[string][]Event),
	}
}

// RecordResolve persists to the inner storage and remembers the event for
// RecentEvents.
func (c *CachingStorage) RecordResolve(ctx context.Context, series string, result types.ResolveResult) error {
	if err := c.inner.RecordResolve(ctx, series, result); err != nil {
		return err
	}
	event := newEvent(series)
	event.Resolve = &result
	c.remember(series, event)
	return nil
}

// RecordAction persists to the inner storage and remembers the event for
// RecentEvents.
func (c *CachingStorage) RecordAction(ctx context.Context, series string, action types.SwitchAction) error {
	if err := c.inner.RecordAction(ctx, series, action); err != nil {
		return err
	}
	event := newEvent(series)
	event.Action = &action
	c.remember(series, event)
	return nil
}

func (c *CachingStorage) remember(series string, event Event) {
	c.cache.Set(event.ID, event, c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	events := append(c.recent[series], event)
	if len(events) > c.maxHistory {
		events = events[len(events)-c.maxHistory:]
	}
	c.recent[series] = events
}

// RecentEvents returns up to maxHistory most recent events for series, in
// chronological order.
func (c *CachingStorage) RecentEvents(series string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	events := c.recent[series]
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// Close closes the underlying storage and the short-TTL cache.
func (c *CachingStorage) Close() error {
	c.cache.Close()
	return c.inner.Close()
}
