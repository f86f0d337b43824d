// Package tzcache memoizes IANA timezone lookups. time.LoadLocation reads
// the zoneinfo database on every call, and one check run projects "now"
// into every registered user's zone, so lookups are cached by zone name.
// Failed lookups are cached too: a user's bad timezone string would
// otherwise hit the disk on every run.
package tzcache

import (
	"sync"
	"sync/atomic"
	"time"
)

type entry struct {
	loc *time.Location
	err error
}

// Cache is a thread-safe timezone location cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Load returns the location for an IANA zone name, resolving and caching it
// on first use.
func (c *Cache) Load(name string) (*time.Location, error) {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return e.loc, e.err
	}

	loc, err := time.LoadLocation(name)
	c.misses.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = entry{loc: loc, err: err}
	return loc, err
}

// Stats returns cache statistics for the health endpoint.
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bad := 0
	for _, e := range c.entries {
		if e.err != nil {
			bad++
		}
	}
	return map[string]interface{}{
		"zones":         len(c.entries),
		"invalid_zones": bad,
		"hits":          c.hits.Load(),
		"misses":        c.misses.Load(),
	}
}
