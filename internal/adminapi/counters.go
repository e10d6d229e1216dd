package adminapi

import (
	"sync/atomic"

	"github.com/pinedrop/noxdns/internal/wire"
)

// Counters accumulates the query outcome totals SPEC_FULL §4.15's /stats
// endpoint reports. It subscribes to the responder's event hook directly
// (responder.EventFunc), so it never touches the request path beyond a
// single atomic increment.
type Counters struct {
	total     atomic.Uint64
	blocked   atomic.Uint64
	cacheHit  atomic.Uint64
	forwarded atomic.Uint64
	failed    atomic.Uint64
}

// Record implements responder.EventFunc.
func (c *Counters) Record(event string, _ wire.Question, _ string) {
	switch event {
	case "query received":
		c.total.Add(1)
	case "blocked":
		c.blocked.Add(1)
	case "cache hit":
		c.cacheHit.Add(1)
	case "forwarded":
		c.forwarded.Add(1)
	case "decode failed", "upstream timeout":
		c.failed.Add(1)
	}
}

// Snapshot is a point-in-time read of the counters.
type Snapshot struct {
	Total     uint64
	Blocked   uint64
	CacheHit  uint64
	Forwarded uint64
	Failed    uint64
}

// Snapshot reads all counters. Individual fields may be from slightly
// different instants (no global lock), which matches spec.md §5's general
// tolerance for relaxed cross-field ordering outside a single request.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Total:     c.total.Load(),
		Blocked:   c.blocked.Load(),
		CacheHit:  c.cacheHit.Load(),
		Forwarded: c.forwarded.Load(),
		Failed:    c.failed.Load(),
	}
}
