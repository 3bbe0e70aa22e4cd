// README: Bounded, time-expiring cache for geocode lookups.
package geocode

import (
	"sync"
	"time"
)

const (
	// defaultCacheCapacity bounds the cache; the single oldest-inserted entry
	// is evicted when the bound is exceeded.
	defaultCacheCapacity = 200

	// defaultCacheTTL is how long a cached lookup stays fresh. Stale entries
	// are refreshed on the next lookup for their key.
	defaultCacheTTL = time.Hour
)

type cacheEntry struct {
	candidates []Candidate
	insertedAt time.Time
}

// Cache is a bounded TTL cache keyed by provider preference + normalized
// query. Eviction is insertion-order (oldest inserted first), not LRU:
// refreshing an existing key does not move it back in the eviction queue.
// Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]cacheEntry
	order    []string
	now      func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// withClock injects a fake clock. Intended for tests only.
func withClock(fn func() time.Time) CacheOption {
	return func(c *Cache) { c.now = fn }
}

// NewCache creates a cache with the given capacity and freshness window.
// Non-positive values fall back to the defaults.
func NewCache(capacity int, ttl time.Duration, opts ...CacheOption) *Cache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	c := &Cache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]cacheEntry, capacity),
		order:    make([]string, 0, capacity),
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the cached candidates for key, or (nil, false) when the key is
// absent or its entry has gone stale.
func (c *Cache) Get(key string) ([]Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		return nil, false
	}
	return entry.candidates, true
}

// Set stores candidates under key. Writing an existing key refreshes its
// timestamp in place; writing a new key past capacity evicts the single
// oldest-inserted entry first.
func (c *Cache) Set(key string, candidates []Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{candidates: candidates, insertedAt: c.now()}
}

// Len reports the number of entries currently held, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
