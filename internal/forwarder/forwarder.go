// Package forwarder implements upstream resolution (spec.md §4.7 FORWARD):
// a single-shot UDP round trip over a fresh ephemeral socket, bounded by a
// wall-clock timeout. Grounded on the original responder's forward_request,
// adapted into an explicit type so the upstream address and timeout are
// configuration rather than process globals.
package forwarder

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrUpstreamTimeout is returned when no reply arrives within the timeout.
var ErrUpstreamTimeout = errors.New("upstream did not reply in time")

// ErrUpstreamIO is returned for any other transport-level failure talking
// to the upstream resolver (dial, send, or receive).
var ErrUpstreamIO = errors.New("upstream i/o error")

const maxDatagramSize = 1024

// DefaultTimeout is spec.md §5's recommended upstream receive bound.
const DefaultTimeout = 5 * time.Second

// Forwarder sends a query datagram to a fixed upstream resolver and returns
// its reply bytes verbatim. Each call opens and closes its own ephemeral
// socket; sockets are never pooled (spec.md §5 Shared resources).
type Forwarder struct {
	Upstream string
	Timeout  time.Duration
}

// New returns a Forwarder targeting upstream ("host:port") with
// DefaultTimeout.
func New(upstream string) *Forwarder {
	return &Forwarder{Upstream: upstream, Timeout: DefaultTimeout}
}

// Forward sends req to the upstream resolver and returns its reply. The
// returned bytes are the raw on-wire reply; the caller decodes them.
func (f *Forwarder) Forward(ctx context.Context, req []byte) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "udp4", f.Upstream)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrUpstreamIO, f.Upstream, err)
	}
	defer conn.Close()

	if _, err := conn.Write(req); err != nil {
		return nil, fmt.Errorf("%w: send to %s: %v", ErrUpstreamIO, f.Upstream, err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("%w: set deadline: %v", ErrUpstreamIO, err)
	}

	buf := make([]byte, maxDatagramSize)
	n, err := conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, fmt.Errorf("%w: %s", ErrUpstreamTimeout, f.Upstream)
		}
		return nil, fmt.Errorf("%w: recv from %s: %v", ErrUpstreamIO, f.Upstream, err)
	}

	return buf[:n], nil
}
