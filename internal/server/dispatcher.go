// Package server implements the DNS dispatcher: the single listening UDP
// socket and per-packet goroutine dispatch described in SPEC_FULL §4.12.
//
// Goroutine model: one recvfrom loop owns the socket; every datagram it
// reads is handed to a brand-new goroutine that runs the responder pipeline
// and writes the reply back on the same shared socket (WriteToUDP is safe
// for concurrent use on a *net.UDPConn). There is no fixed worker pool —
// the responder's own cache lookup and single upstream round trip already
// bound a request's cost, so a goroutine-per-packet model gives the "one
// inbound request does not delay another" contract spec.md §5 requires
// without the teacher's fixed-pool bookkeeping.
package server

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/pinedrop/noxdns/internal/pool"
	"github.com/pinedrop/noxdns/internal/responder"
)

// Dispatcher owns the listening socket and fans incoming datagrams out to
// the responder pipeline.
type Dispatcher struct {
	Responder *responder.Responder
	Logger    *slog.Logger

	bufPool *pool.Pool[*[pool.DatagramBufSize]byte]
	conn    *net.UDPConn
	wg      sync.WaitGroup
}

// New builds a Dispatcher around r.
func New(r *responder.Responder) *Dispatcher {
	return &Dispatcher{
		Responder: r,
		Logger:    slog.Default(),
		bufPool:   pool.NewDatagramBufPool(),
	}
}

// Bind opens the listening socket without starting the receive loop. Split
// out from ListenAndServe so callers (and tests) can observe the bound
// address, e.g. when addr requests an ephemeral port ("127.0.0.1:0").
func (d *Dispatcher) Bind(addr string) error {
	conn, err := listenReusePortUDP(addr)
	if err != nil {
		return err
	}
	d.conn = conn
	return nil
}

// Addr returns the bound local address. Only valid after Bind succeeds.
func (d *Dispatcher) Addr() net.Addr {
	return d.conn.LocalAddr()
}

// Serve runs the receive loop on the already-bound socket until ctx is
// cancelled, then waits for in-flight goroutines to drain.
func (d *Dispatcher) Serve(ctx context.Context) error {
	conn := d.conn
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	d.Logger.Info("dispatcher listening", "addr", conn.LocalAddr().String())
	d.recvLoop(ctx, conn)
	d.wg.Wait()
	return nil
}

// ListenAndServe binds addr with SO_REUSEPORT and runs the receive loop
// until ctx is cancelled, then waits for in-flight goroutines to drain.
func (d *Dispatcher) ListenAndServe(ctx context.Context, addr string) error {
	if err := d.Bind(addr); err != nil {
		return err
	}
	return d.Serve(ctx)
}

func (d *Dispatcher) recvLoop(ctx context.Context, conn *net.UDPConn) {
	for {
		bufPtr := d.bufPool.Get()
		n, peer, err := conn.ReadFromUDP(bufPtr[:])
		if err != nil {
			d.bufPool.Put(bufPtr)
			if ctx.Err() != nil {
				return
			}
			d.Logger.Warn("recv failed", "error", err)
			return
		}

		req := make([]byte, n)
		copy(req, bufPtr[:n])
		d.bufPool.Put(bufPtr)

		d.wg.Add(1)
		go d.handle(ctx, conn, peer, req)
	}
}

func (d *Dispatcher) handle(ctx context.Context, conn *net.UDPConn, peer *net.UDPAddr, req []byte) {
	defer d.wg.Done()

	resp := d.Responder.Handle(ctx, peer.String(), req)
	if resp == nil {
		return
	}
	if _, err := conn.WriteToUDP(resp, peer); err != nil {
		d.Logger.Warn("send failed", "peer", peer.String(), "error", err)
	}
}

// listenReusePortUDP binds addr with SO_REUSEPORT set, grounded on the
// teacher's listenReusePort: lets a second instance bind the same address
// during a rolling restart without a conflict.
func listenReusePortUDP(addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp", udpAddr.String())
	if err != nil {
		return nil, err
	}
	return pc.(*net.UDPConn), nil
}
