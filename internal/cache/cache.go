// Package cache provides a small in-memory TTL cache with lazy invalidation.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long an entry stays fresh.
const DefaultTTL = 5 * time.Minute

type entry[T any] struct {
	payload   T
	fetchedAt time.Time
}

// Cache maps string keys to payloads stamped with fetch time. Staleness is
// checked only on read; stale entries behave as absent and are dropped then.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache. ttl <= 0 falls back to DefaultTTL.
func New[T any](ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the payload for key if present and fresh.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero T
	if !ok {
		return zero, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return zero, false
	}
	return e.payload, true
}

// Set stores payload under key, overwriting any prior entry and restamping
// its fetch time.
func (c *Cache[T]) Set(key string, payload T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[T]{payload: payload, fetchedAt: c.now()}
}

// Invalidate removes key so the next Get forces a refetch.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}
