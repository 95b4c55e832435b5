// Package cache provides the content-addressed response cache for the
// narrative gateway: TTL-bounded, capacity-bounded, insertion-order evicted.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Stats summarizes cache effectiveness for the status endpoint.
type Stats struct {
	Entries  int   `json:"entries"`
	Capacity int   `json:"capacity"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
}

// Cache maps request fingerprints to previously generated responses.
// Expiry is lazy (checked on read, no background sweep) and eviction under
// capacity pressure drops the oldest-inserted entry, not the least
// recently used one. A cache failure is never an error; absence is the
// only negative outcome.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	order    []string // fingerprints in insertion order
	capacity int
	hits     int64
	misses   int64
	now      func() time.Time
}

// New creates a cache bounded to capacity entries.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		entries:  make(map[string]entry, capacity),
		order:    make([]string, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// SetClock overrides the cache clock. Tests only.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Lookup returns the cached value for fingerprint if present and
// unexpired. An expired entry is deleted and treated as absent.
func (c *Cache) Lookup(fingerprint string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fingerprint]
	if !ok {
		c.misses++
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.removeLocked(fingerprint)
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

// Store inserts or overwrites the entry for fingerprint with the given
// TTL. When the map would exceed capacity the oldest-inserted entry is
// evicted first. Overwriting keeps the fingerprint's original insertion
// position.
func (c *Cache) Store(fingerprint string, value any, ttl time.Duration) {
	if value == nil || ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.entries[fingerprint]
	if !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[fingerprint] = entry{value: value, expiresAt: c.now().Add(ttl)}
	if !exists {
		c.order = append(c.order, fingerprint)
	}
}

// removeLocked deletes the entry and its insertion-order slot, so a later
// re-store of the same fingerprint counts as a fresh insertion. Caller
// must hold the lock.
func (c *Cache) removeLocked(fingerprint string) {
	delete(c.entries, fingerprint)
	for i, fp := range c.order {
		if fp == fingerprint {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// evictOldestLocked drops the oldest-inserted entry. order holds only
// live fingerprints, so the head is always evictable.
func (c *Cache) evictOldestLocked() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit/miss counters and occupancy.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:  len(c.entries),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}
