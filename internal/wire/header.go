package wire

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// HeaderSize is the fixed size of a DNS message header in bytes.
const HeaderSize = 12

// Header is the 12-byte fixed DNS header (RFC 1035 Section 4.1.1). Storage
// is the decoded fields; typed accessors below read and write the packed
// Flags word so callers never touch the bitmask directly.
type Header struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// NewReply builds the header for a synthesized or forwarded reply: QR=1,
// OPCODE=QUERY, RA=1, QDCOUNT=1, a random transaction ID, everything else
// zero. Callers overwrite RCode/ANCount/etc. as the response shape demands.
func NewReply() Header {
	h := Header{ID: randomID(), QDCount: 1}
	h.SetQR(true)
	h.SetOpcode(OpcodeQuery)
	h.SetRA(true)
	return h
}

// NewQuery mirrors NewReply for an outbound question: QR=0, QDCOUNT=1, a
// random transaction ID.
func NewQuery() Header {
	h := Header{ID: randomID(), QDCount: 1}
	h.SetOpcode(OpcodeQuery)
	return h
}

func randomID() uint16 {
	return uint16(rand.Uint32())
}

func (h Header) QR() bool { return h.Flags&flagQR != 0 }

func (h *Header) SetQR(v bool) { h.setFlag(flagQR, v) }

func (h Header) Opcode() Opcode { return Opcode((h.Flags & flagOpcode) >> opcodeShift) }

func (h *Header) SetOpcode(op Opcode) {
	h.Flags = (h.Flags &^ flagOpcode) | (uint16(op)<<opcodeShift)&flagOpcode
}

func (h Header) AA() bool { return h.Flags&flagAA != 0 }
func (h *Header) SetAA(v bool) { h.setFlag(flagAA, v) }

func (h Header) TC() bool      { return h.Flags&flagTC != 0 }
func (h *Header) SetTC(v bool) { h.setFlag(flagTC, v) }

func (h Header) RD() bool      { return h.Flags&flagRD != 0 }
func (h *Header) SetRD(v bool) { h.setFlag(flagRD, v) }

func (h Header) RA() bool      { return h.Flags&flagRA != 0 }
func (h *Header) SetRA(v bool) { h.setFlag(flagRA, v) }

func (h Header) Z() bool      { return h.Flags&flagZ != 0 }
func (h *Header) SetZ(v bool) { h.setFlag(flagZ, v) }

func (h Header) AD() bool      { return h.Flags&flagAD != 0 }
func (h *Header) SetAD(v bool) { h.setFlag(flagAD, v) }

func (h Header) CD() bool      { return h.Flags&flagCD != 0 }
func (h *Header) SetCD(v bool) { h.setFlag(flagCD, v) }

func (h Header) RCode() RCode { return RCode(h.Flags & flagRCode) }

func (h *Header) SetRCode(rc RCode) {
	h.Flags = (h.Flags &^ flagRCode) | (uint16(rc) & flagRCode)
}

func (h *Header) setFlag(mask uint16, v bool) {
	if v {
		h.Flags |= mask
	} else {
		h.Flags &^= mask
	}
}

// Marshal serializes the header to its 12-byte wire form.
func (h Header) Marshal() []byte {
	b := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(b[0:2], h.ID)
	binary.BigEndian.PutUint16(b[2:4], h.Flags)
	binary.BigEndian.PutUint16(b[4:6], h.QDCount)
	binary.BigEndian.PutUint16(b[6:8], h.ANCount)
	binary.BigEndian.PutUint16(b[8:10], h.NSCount)
	binary.BigEndian.PutUint16(b[10:12], h.ARCount)
	return b
}

// DecodeHeader parses the fixed 12-byte header from msg[0:12].
func DecodeHeader(msg []byte) (Header, error) {
	if len(msg) < HeaderSize {
		return Header{}, fmt.Errorf("%w: message is %d bytes, need %d for header", ErrTruncated, len(msg), HeaderSize)
	}
	return Header{
		ID:      binary.BigEndian.Uint16(msg[0:2]),
		Flags:   binary.BigEndian.Uint16(msg[2:4]),
		QDCount: binary.BigEndian.Uint16(msg[4:6]),
		ANCount: binary.BigEndian.Uint16(msg[6:8]),
		NSCount: binary.BigEndian.Uint16(msg[8:10]),
		ARCount: binary.BigEndian.Uint16(msg[10:12]),
	}, nil
}
