// Package memcache is the short-TTL in-memory request cache. It shields the
// throttle and the upstream from redundant calls within a session. Keys are
// fully-qualified request identities (resource type plus parameters), not
// natural keys, so different query shapes for the same symbol never collide.
package memcache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// KeyTopMovers is the request identity of the market-mover list.
const KeyTopMovers = "movers"

func KeyQuote(symbol string) string        { return "quote:" + symbol }
func KeyTimeSeries(symbol string) string   { return "series:" + symbol }
func KeySearch(query string) string        { return "search:" + query }
func KeyFundamentals(symbol string) string { return "fundamentals:" + symbol }

// Cache wraps go-cache with TTL-only expiry plus a stale shadow: the last
// value written under each key stays readable through GetStale after its TTL
// lapses, until Flush. Growth is unbounded; the working set of a single
// client session is small.
type Cache struct {
	c          *gocache.Cache
	defaultTTL time.Duration

	mu    sync.RWMutex
	stale map[string]interface{}
}

// New creates a cache with the given default TTL.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		c:          gocache.New(defaultTTL, 10*time.Minute),
		defaultTTL: defaultTTL,
		stale:      make(map[string]interface{}),
	}
}

// Get returns the value stored under key if it has not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	return c.c.Get(key)
}

// GetStale returns the last value stored under key regardless of expiry.
func (c *Cache) GetStale(key string) (interface{}, bool) {
	if v, ok := c.c.Get(key); ok {
		return v, true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.stale[key]
	return v, ok
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetTTL(key, value, c.defaultTTL)
}

// SetTTL stores value under key with an explicit TTL.
func (c *Cache) SetTTL(key string, value interface{}, ttl time.Duration) {
	c.c.Set(key, value, ttl)
	c.mu.Lock()
	c.stale[key] = value
	c.mu.Unlock()
}

// Flush drops every entry, stale shadows included. Used by pull-to-refresh,
// which must re-validate against upstream without touching the persistent
// tier.
func (c *Cache) Flush() {
	c.c.Flush()
	c.mu.Lock()
	c.stale = make(map[string]interface{})
	c.mu.Unlock()
}
