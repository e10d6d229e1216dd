package wire

import (
	"encoding/binary"
	"fmt"
)

// rrFixedSize is the length of TYPE+CLASS+TTL+RDLENGTH preceding RDATA.
const rrFixedSize = 10

// ResourceRecord is NAME+TYPE+CLASS+TTL+RDATA (RFC 1035 Section 3.2.1).
// RDATA is always the raw bytes as they appeared on the wire: this proxy
// never interprets or rewrites record payloads (spec.md §4.4, §9 — RDATA
// containing compressed names is a known limitation of verbatim RDATA).
type ResourceRecord struct {
	Name  Name
	Type  uint16
	Class uint16
	TTL   uint32
	RData []byte
}

// Question projects the record's (Name, Type, Class) onto the Question
// that would have produced it, for cache insertion keyed by answer.
func (rr ResourceRecord) Question() Question {
	return Question{Name: rr.Name, Type: rr.Type, Class: rr.Class}
}

// Marshal serializes the record, compressing its name against table. RDATA
// is copied through unchanged.
func (rr ResourceRecord) Marshal(out []byte, table *CompressionTable) ([]byte, error) {
	out, err := EncodeName(rr.Name, out, table)
	if err != nil {
		return nil, err
	}
	var fixed [rrFixedSize]byte
	binary.BigEndian.PutUint16(fixed[0:2], rr.Type)
	binary.BigEndian.PutUint16(fixed[2:4], rr.Class)
	binary.BigEndian.PutUint32(fixed[4:8], rr.TTL)
	binary.BigEndian.PutUint16(fixed[8:10], uint16(len(rr.RData)))
	out = append(out, fixed[:]...)
	out = append(out, rr.RData...)
	return out, nil
}

// DecodeRecord reads one resource record starting at offset and returns it
// along with the offset immediately following.
func DecodeRecord(msg []byte, offset int) (ResourceRecord, int, error) {
	name, off, err := DecodeName(msg, offset)
	if err != nil {
		return ResourceRecord{}, 0, err
	}
	if off+rrFixedSize > len(msg) {
		return ResourceRecord{}, 0, fmt.Errorf("%w: truncated record header at offset %d", ErrTruncated, off)
	}
	rrType := binary.BigEndian.Uint16(msg[off : off+2])
	rrClass := binary.BigEndian.Uint16(msg[off+2 : off+4])
	ttl := binary.BigEndian.Uint32(msg[off+4 : off+8])
	rdlen := int(binary.BigEndian.Uint16(msg[off+8 : off+10]))
	off += rrFixedSize

	if off+rdlen > len(msg) {
		return ResourceRecord{}, 0, fmt.Errorf("%w: truncated rdata at offset %d (need %d bytes)", ErrTruncated, off, rdlen)
	}
	rdata := make([]byte, rdlen)
	copy(rdata, msg[off:off+rdlen])
	off += rdlen

	return ResourceRecord{Name: name, Type: rrType, Class: rrClass, TTL: ttl, RData: rdata}, off, nil
}

// WithTTL returns a copy of rr with TTL replaced; used by the cache to hand
// out a decayed record without mutating the stored entry (spec.md §4.6:
// "The record stored in the map is not mutated").
func (rr ResourceRecord) WithTTL(ttl uint32) ResourceRecord {
	cp := rr
	cp.TTL = ttl
	return cp
}
