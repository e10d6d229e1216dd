// Package pool provides the buffer pool the dispatcher (SPEC_FULL §4.12)
// uses to reuse inbound-packet storage across requests instead of
// allocating one per datagram.
package pool

import "sync"

// Pool is a generic wrapper around sync.Pool.
type Pool[T any] struct {
	internal sync.Pool
}

// New creates a new Pool with the given constructor.
func New[T any](newFn func() T) *Pool[T] {
	return &Pool[T]{
		internal: sync.Pool{
			New: func() any {
				return newFn()
			},
		},
	}
}

// Get retrieves an item from the pool.
func (p *Pool[T]) Get() T {
	return p.internal.Get().(T)
}

// Put returns an item to the pool.
func (p *Pool[T]) Put(item T) {
	p.internal.Put(item)
}

// DatagramBufSize is the largest datagram the wire protocol allows in
// either direction (spec.md §6).
const DatagramBufSize = 1024

// NewDatagramBufPool returns a Pool of fixed-size buffers sized for one
// inbound UDP datagram, as used by the dispatcher's recvfrom loop.
func NewDatagramBufPool() *Pool[*[DatagramBufSize]byte] {
	return New(func() *[DatagramBufSize]byte {
		return new([DatagramBufSize]byte)
	})
}
