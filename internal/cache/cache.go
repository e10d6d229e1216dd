// Package cache implements the TTL-decaying answer cache (spec.md §4.6):
// a flat map from question to the most recently cached record, with the
// remaining TTL computed lazily from wall-clock elapsed time on read. There
// is no LRU eviction and no capacity cap, unlike the richer resolver cache
// this proxy's teacher codebase carries for other resolvers.
package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pinedrop/noxdns/internal/wire"
)

type entry struct {
	rr       wire.ResourceRecord
	insertAt time.Time
}

// Cache is a question-keyed store of the single most recent answer,
// decaying its TTL on every read. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[wire.QuestionKey]entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[wire.QuestionKey]entry, 128)}
}

// Get returns the cached record for key with its TTL decayed by elapsed
// whole seconds since insertion. If the decayed TTL would be zero or
// negative, the entry is evicted and Get reports a miss: eviction only
// ever happens as a side effect of a read, never on a background timer.
func (c *Cache) Get(key wire.QuestionKey) (wire.ResourceRecord, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return wire.ResourceRecord{}, false
	}

	elapsed := uint32(time.Since(e.insertAt).Seconds())
	if elapsed >= e.rr.TTL {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return wire.ResourceRecord{}, false
	}

	return e.rr.WithTTL(e.rr.TTL - elapsed), true
}

// Insert stores rr under key, stamped with the current time. A later
// Insert for the same key replaces the earlier entry outright.
func (c *Cache) Insert(key wire.QuestionKey, rr wire.ResourceRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{rr: rr, insertAt: time.Now()}
}

// Reset discards every entry.
func (c *Cache) Reset() {
	slog.Info("resetting answer cache")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[wire.QuestionKey]entry, 128)
}

// Len reports the number of entries currently stored, including any that
// have decayed past their TTL but have not yet been read (and so not yet
// evicted).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
