package cache

import (
	"testing"
	"time"

	"github.com/pinedrop/noxdns/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustName(t *testing.T, s string) wire.Name {
	t.Helper()
	n, err := wire.ParseName(s)
	require.NoError(t, err)
	return n
}

// TestCache_Basic is spec.md §8 scenario 3, "Cache basic": an inserted
// record for google.com is retrievable, and an unrelated question misses.
func TestCache_Basic(t *testing.T) {
	c := New()
	q := wire.Question{Name: mustName(t, "google.com"), Type: uint16(wire.TypeA), Class: uint16(wire.ClassIN)}
	rr := wire.ResourceRecord{
		Name: q.Name, Type: q.Type, Class: q.Class,
		TTL: 10, RData: []byte{8, 8, 8, 8},
	}
	c.Insert(q.Key(), rr)

	got, ok := c.Get(q.Key())
	require.True(t, ok)
	assert.Equal(t, rr, got)

	other := wire.Question{Name: mustName(t, "bing.com"), Type: uint16(wire.TypeA), Class: uint16(wire.ClassIN)}
	_, ok = c.Get(other.Key())
	assert.False(t, ok)
}

// TestCache_Timeout is spec.md §8 scenario 4, "Cache timeout": a record
// with a 1-second TTL is gone once more than a second has elapsed.
func TestCache_Timeout(t *testing.T) {
	c := New()
	q := wire.Question{Name: mustName(t, "google.com"), Type: uint16(wire.TypeA), Class: uint16(wire.ClassIN)}
	rr := wire.ResourceRecord{Name: q.Name, Type: q.Type, Class: q.Class, TTL: 1, RData: []byte{8, 8, 8, 8}}
	c.Insert(q.Key(), rr)

	_, ok := c.Get(q.Key())
	assert.True(t, ok)

	time.Sleep(1010 * time.Millisecond)

	_, ok = c.Get(q.Key())
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry must be evicted by the read that discovered it")
}

func TestCache_TTLDecaysAcrossReads(t *testing.T) {
	c := New()
	q := wire.Question{Name: mustName(t, "example.com"), Type: uint16(wire.TypeA), Class: uint16(wire.ClassIN)}
	rr := wire.ResourceRecord{Name: q.Name, Type: q.Type, Class: q.Class, TTL: 5, RData: []byte{1, 2, 3, 4}}
	c.Insert(q.Key(), rr)

	time.Sleep(1100 * time.Millisecond)

	got, ok := c.Get(q.Key())
	require.True(t, ok)
	assert.LessOrEqual(t, got.TTL, uint32(4))
	assert.Equal(t, uint32(5), c.entries[q.Key()].rr.TTL, "the stored record's TTL field itself must not mutate")
}

func TestCache_InsertReplacesExistingEntry(t *testing.T) {
	c := New()
	q := wire.Question{Name: mustName(t, "example.com"), Type: uint16(wire.TypeA), Class: uint16(wire.ClassIN)}
	c.Insert(q.Key(), wire.ResourceRecord{TTL: 10, RData: []byte{1, 1, 1, 1}})
	c.Insert(q.Key(), wire.ResourceRecord{TTL: 20, RData: []byte{2, 2, 2, 2}})

	got, ok := c.Get(q.Key())
	require.True(t, ok)
	assert.Equal(t, []byte{2, 2, 2, 2}, got.RData)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Reset(t *testing.T) {
	c := New()
	q := wire.Question{Name: mustName(t, "example.com"), Type: uint16(wire.TypeA), Class: uint16(wire.ClassIN)}
	c.Insert(q.Key(), wire.ResourceRecord{TTL: 10})
	require.Equal(t, 1, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(q.Key())
	assert.False(t, ok)
}
