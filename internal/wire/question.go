package wire

import (
	"encoding/binary"
	"fmt"
)

// Question is a single entry in the question section (RFC 1035 Section
// 4.1.2): QNAME, QTYPE, QCLASS.
type Question struct {
	Name  Name
	Type  uint16
	Class uint16
}

// QuestionKey is the comparable, case-folded projection of a Question used
// as a cache key (spec.md §3: "Equality and hashing cover all three
// fields"). Cache lookups, which must be case-insensitive, go through this
// (the blocklist folds case on the Name itself); the wire-level Question
// preserves whatever case arrived
// on the wire so re-encoding stays byte-exact.
type QuestionKey struct {
	Name  string
	Type  uint16
	Class uint16
}

// Key returns the case-folded, comparable projection of q.
func (q Question) Key() QuestionKey {
	return QuestionKey{Name: q.Name.Lower().String(), Type: q.Type, Class: q.Class}
}

// Marshal serializes the question, compressing its name against table.
func (q Question) Marshal(out []byte, table *CompressionTable) ([]byte, error) {
	out, err := EncodeName(q.Name, out, table)
	if err != nil {
		return nil, err
	}
	var fixed [4]byte
	binary.BigEndian.PutUint16(fixed[0:2], q.Type)
	binary.BigEndian.PutUint16(fixed[2:4], q.Class)
	return append(out, fixed[:]...), nil
}

// DecodeQuestion reads a question starting at offset and returns it along
// with the offset immediately following.
func DecodeQuestion(msg []byte, offset int) (Question, int, error) {
	name, off, err := DecodeName(msg, offset)
	if err != nil {
		return Question{}, 0, err
	}
	if off+4 > len(msg) {
		return Question{}, 0, fmt.Errorf("%w: truncated question at offset %d", ErrTruncated, off)
	}
	q := Question{
		Name:  name,
		Type:  binary.BigEndian.Uint16(msg[off : off+2]),
		Class: binary.BigEndian.Uint16(msg[off+2 : off+4]),
	}
	return q, off + 4, nil
}
