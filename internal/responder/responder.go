// Package responder implements the per-request pipeline (spec.md §4.7):
// DECODE, CLASSIFY, then one of BLOCK, CACHE_HIT, or FORWARD, then ENCODE.
// Grounded on the teacher's QueryHandler (internal/server/query_handler.go):
// same shape (decode, dispatch, log at debug, never let an error escape to
// the caller), generalized to this proxy's block/cache/forward semantics.
package responder

import (
	"context"
	"log/slog"

	"github.com/pinedrop/noxdns/internal/blocklist"
	"github.com/pinedrop/noxdns/internal/cache"
	"github.com/pinedrop/noxdns/internal/forwarder"
	"github.com/pinedrop/noxdns/internal/wire"
)

// EventFunc receives a structured event name for every step of a request
// the pipeline reports (spec.md §6 Logging: "query received", "blocked",
// "cache hit", "forwarded", "cache insert", "decode failed", "upstream
// timeout"), the question it concerns (the zero Question when the request
// itself did not decode), and the client address that sent the request. A
// querylog sink and the admin API's counters both subscribe through this
// hook.
type EventFunc func(event string, q wire.Question, peer string)

// Responder owns the shared, read-mostly state every request consults:
// the immutable blocklist, the read/write cache, and the upstream
// forwarder. It holds no per-request state.
type Responder struct {
	Blocklist *blocklist.Blocklist
	Cache     *cache.Cache
	Forwarder *forwarder.Forwarder
	OnEvent   EventFunc
	Logger    *slog.Logger
}

// New builds a Responder from its shared dependencies.
func New(bl *blocklist.Blocklist, c *cache.Cache, fwd *forwarder.Forwarder) *Responder {
	return &Responder{Blocklist: bl, Cache: c, Forwarder: fwd, Logger: slog.Default()}
}

func (r *Responder) emit(event string, q wire.Question, peer string) {
	if r.OnEvent != nil {
		r.OnEvent(event, q, peer)
	}
}

// Handle runs one request through to completion and returns the bytes to
// send to the client, or nil if nothing should be sent (a DECODE failure:
// the packet is dropped silently per spec.md §4.7). peer identifies the
// requesting client for logging and the query log only; it plays no part
// in DECODE/CLASSIFY/BLOCK/CACHE/FORWARD semantics.
func (r *Responder) Handle(ctx context.Context, peer string, req []byte) []byte {
	dg, err := wire.DecodeDatagram(req)
	if err != nil {
		r.Logger.Warn("decode failed", "error", err)
		r.emit("decode failed", wire.Question{}, peer)
		return nil
	}
	if len(dg.Questions) == 0 {
		r.Logger.Warn("decode failed", "error", "no questions in datagram")
		r.emit("decode failed", wire.Question{}, peer)
		return nil
	}

	q := dg.Questions[0]
	r.Logger.Debug("query received", "name", q.Name.String(), "type", q.Type, "class", q.Class)
	r.emit("query received", q, peer)

	rtype := wire.RecordType(q.Type)
	if rtype != wire.TypeA && rtype != wire.TypeAAAA {
		return r.forward(ctx, peer, req, dg, q)
	}

	if r.Blocklist.Contains(q.Name) {
		r.Logger.Debug("blocked", "name", q.Name.String())
		r.emit("blocked", q, peer)
		return r.encodeOrDrop(blockReply(dg.Header, q))
	}

	if rr, ok := r.Cache.Get(q.Key()); ok {
		r.Logger.Debug("cache hit", "name", q.Name.String())
		r.emit("cache hit", q, peer)
		return r.encodeOrDrop(cacheHitReply(dg.Header, q, rr))
	}

	return r.forward(ctx, peer, req, dg, q)
}

func (r *Responder) forward(ctx context.Context, peer string, req []byte, dg wire.Datagram, q wire.Question) []byte {
	reply, err := r.Forwarder.Forward(ctx, req)
	if err != nil {
		r.Logger.Warn("upstream timeout", "name", q.Name.String(), "error", err)
		r.emit("upstream timeout", q, peer)
		return r.encodeOrDrop(blockReply(dg.Header, q))
	}

	replyDg, err := wire.DecodeDatagram(reply)
	if err != nil {
		r.Logger.Warn("upstream reply decode failed", "name", q.Name.String(), "error", err)
		r.emit("decode failed", q, peer)
		return r.encodeOrDrop(blockReply(dg.Header, q))
	}
	if int(replyDg.Header.ANCount) != len(replyDg.Answers) {
		r.Logger.Warn("upstream reply answer count mismatch", "name", q.Name.String())
		r.emit("decode failed", q, peer)
		return r.encodeOrDrop(blockReply(dg.Header, q))
	}

	for _, answer := range replyDg.Answers {
		r.Cache.Insert(answer.Question().Key(), answer)
		r.Logger.Debug("cache insert", "name", answer.Name.String(), "type", answer.Type)
		r.emit("cache insert", answer.Question(), peer)
	}

	r.Logger.Debug("forwarded", "name", q.Name.String())
	r.emit("forwarded", q, peer)
	return reply
}

func (r *Responder) encodeOrDrop(dg wire.Datagram) []byte {
	out, err := dg.Marshal()
	if err != nil {
		r.Logger.Warn("encode failed", "error", err)
		return nil
	}
	return out
}

// blockReply builds the NXDOMAIN envelope shared by BLOCK and FORWARD_FAIL.
func blockReply(reqHeader wire.Header, q wire.Question) wire.Datagram {
	h := wire.NewReply()
	h.ID = reqHeader.ID
	h.SetOpcode(reqHeader.Opcode())
	h.SetRD(reqHeader.RD())
	h.SetRA(true)
	h.SetAD(reqHeader.AD())
	h.SetCD(reqHeader.CD())
	h.SetRCode(wire.RCodeNXDomain)
	return wire.Datagram{Header: h, Questions: []wire.Question{q}}
}

// cacheHitReply builds the positive envelope for CACHE_HIT.
func cacheHitReply(reqHeader wire.Header, q wire.Question, rr wire.ResourceRecord) wire.Datagram {
	h := wire.NewReply()
	h.ID = reqHeader.ID
	h.SetOpcode(reqHeader.Opcode())
	h.SetRD(reqHeader.RD())
	h.SetRA(true)
	h.SetAD(reqHeader.AD())
	h.SetCD(reqHeader.CD())
	h.SetRCode(wire.RCodeNoError)
	return wire.Datagram{
		Header:    h,
		Questions: []wire.Question{q},
		Answers:   []wire.ResourceRecord{rr},
	}
}
