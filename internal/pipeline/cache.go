package pipeline

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	value     any
	createdAt time.Time
}

// Cache memoizes operation results by key with a per-call TTL. It is a
// single-process, in-memory cache with no cross-process sharing; that is a
// documented constraint of the service, not an oversight. Eviction is lazy:
// an expired entry is removed on the next lookup, there is no background
// sweep.
//
// The cache is constructed once and injected into its callers; the mutex
// makes it safe for concurrent fan-out workers.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Do returns the cached value for key if one exists and is younger than
// ttl. Otherwise it invokes op, stores the result, and returns it. Errors
// are never cached; a failing miss propagates and leaves no entry behind.
func (c *Cache) Do(ctx context.Context, rc *Context, key string, ttl time.Duration, op Operation, args Args) (any, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		age := c.now().Sub(entry.createdAt)
		if age < ttl {
			c.mu.Unlock()
			rc.Info("cache hit", "key", key, "age", age.Round(time.Millisecond))
			return entry.value, nil
		}
		delete(c.entries, key)
		rc.Debug("cache entry expired", "key", key)
	}
	c.mu.Unlock()

	rc.Info("cache miss", "key", key)

	value, err := op(ctx, rc, args)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, createdAt: c.now()}
	c.mu.Unlock()

	rc.Debug("cached result", "key", key)
	return value, nil
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
