package adminapi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pinedrop/noxdns/internal/wire"
)

func TestCounters_Record(t *testing.T) {
	var c Counters
	q := wire.Question{}

	c.Record("query received", q, "")
	c.Record("blocked", q, "")
	c.Record("cache hit", q, "")
	c.Record("forwarded", q, "")
	c.Record("decode failed", q, "")
	c.Record("upstream timeout", q, "")
	c.Record("cache insert", q, "") // not a counted outcome

	snap := c.Snapshot()
	assert.Equal(t, uint64(1), snap.Total)
	assert.Equal(t, uint64(1), snap.Blocked)
	assert.Equal(t, uint64(1), snap.CacheHit)
	assert.Equal(t, uint64(1), snap.Forwarded)
	assert.Equal(t, uint64(2), snap.Failed)
}
