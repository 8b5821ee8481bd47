package resolver

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	resource Resource
	built    time.Time
}

// cache holds resolved resources keyed by source cache key.
type cache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cacheEntry
	sf      singleflight.Group
	now     func() time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *cache) isExpired(e cacheEntry) bool {
	if c.ttl <= 0 {
		return true // No caching
	}
	return c.now().Sub(e.built) > c.ttl
}

// getOrResolve returns a fresh cached resource or runs resolve once for all
// concurrent callers of the same key.
func (c *cache) getOrResolve(ctx context.Context, key string, resolve func(context.Context) (Resource, error)) (Resource, error) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if exists && !c.isExpired(entry) {
		return entry.resource, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		c.mu.RLock()
		entry, exists := c.entries[key]
		c.mu.RUnlock()

		if exists && !c.isExpired(entry) {
			return entry.resource, nil
		}

		res, err := resolve(ctx)
		if err != nil {
			return nil, err
		}

		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[key] = cacheEntry{resource: res, built: c.now()}
			c.mu.Unlock()
		}
		return res, nil
	})
	if err != nil {
		return Resource{}, err
	}
	return result.(Resource), nil
}

func (c *cache) invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
