package wire

// Defensive caps on the capacity preallocated for each section, so a header
// claiming an implausible count does not trigger a large slice allocation.
// The caps never reject a count themselves: a buffer too short for the
// claimed count fails with ErrTruncated during the per-item decode loop.
const (
	maxDecodeQuestions = 16
	maxDecodeRecords   = 256
)

// Datagram is a full DNS message: header plus the four record sections
// (RFC 1035 Section 4). spec.md §1 Non-goals: the pipeline only inspects
// questions[0] for blocking/caching decisions; additional questions, if
// present, are forwarded and returned unchanged.
type Datagram struct {
	Header      Header
	Questions   []Question
	Answers     []ResourceRecord
	Authorities []ResourceRecord
	Additionals []ResourceRecord
}

// DecodeDatagram parses a complete datagram from msg. Trailing bytes past
// the last decoded record are tolerated (spec.md §4.4): a 1024-byte UDP
// buffer is typically only partially filled.
func DecodeDatagram(msg []byte) (Datagram, error) {
	h, err := DecodeHeader(msg)
	if err != nil {
		return Datagram{}, err
	}

	off := HeaderSize
	d := Datagram{Header: h}

	d.Questions = make([]Question, 0, capFor(h.QDCount, maxDecodeQuestions))
	for i := uint16(0); i < h.QDCount; i++ {
		q, next, err := DecodeQuestion(msg, off)
		if err != nil {
			return Datagram{}, err
		}
		d.Questions = append(d.Questions, q)
		off = next
	}

	d.Answers, off, err = decodeRecords(msg, off, h.ANCount)
	if err != nil {
		return Datagram{}, err
	}
	d.Authorities, off, err = decodeRecords(msg, off, h.NSCount)
	if err != nil {
		return Datagram{}, err
	}
	d.Additionals, _, err = decodeRecords(msg, off, h.ARCount)
	if err != nil {
		return Datagram{}, err
	}

	return d, nil
}

func decodeRecords(msg []byte, off int, count uint16) ([]ResourceRecord, int, error) {
	out := make([]ResourceRecord, 0, capFor(count, maxDecodeRecords))
	for i := uint16(0); i < count; i++ {
		rr, next, err := DecodeRecord(msg, off)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rr)
		off = next
	}
	return out, off, nil
}

func capFor(count uint16, limit int) int {
	if int(count) > limit {
		return limit
	}
	return int(count)
}

// Marshal serializes the full datagram. All name emissions in the datagram
// — questions, answers, authorities, additionals — share one
// CompressionTable, per spec.md §4.4.
func (d Datagram) Marshal() ([]byte, error) {
	h := d.Header
	h.QDCount = uint16(len(d.Questions))
	h.ANCount = uint16(len(d.Answers))
	h.NSCount = uint16(len(d.Authorities))
	h.ARCount = uint16(len(d.Additionals))

	out := make([]byte, 0, HeaderSize+64*(len(d.Questions)+len(d.Answers)+len(d.Authorities)+len(d.Additionals)+1))
	out = append(out, h.Marshal()...)

	table := NewCompressionTable()

	var err error
	for _, q := range d.Questions {
		out, err = q.Marshal(out, table)
		if err != nil {
			return nil, err
		}
	}
	for _, rr := range d.Answers {
		out, err = rr.Marshal(out, table)
		if err != nil {
			return nil, err
		}
	}
	for _, rr := range d.Authorities {
		out, err = rr.Marshal(out, table)
		if err != nil {
			return nil, err
		}
	}
	for _, rr := range d.Additionals {
		out, err = rr.Marshal(out, table)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
