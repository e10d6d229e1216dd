package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenario1 is spec.md §8 scenario 1, "Basic A-record decode": a query
// question for www.google.com followed by an answer whose name is a
// compression pointer back into the question.
func scenario1() []byte {
	return []byte{
		0x44, 0x44, 0x80, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00,
		3, 'w', 'w', 'w', 6, 'g', 'o', 'o', 'g', 'l', 'e', 3, 'c', 'o', 'm', 0,
		0x00, 0x01, 0x00, 0x01,
		0xC0, 0x0C,
		0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x01, 0x68, 0x00, 0x04,
		0x7F, 0x00, 0x00, 0x01,
	}
}

func TestDecodeDatagram_Scenario1(t *testing.T) {
	msg := scenario1()
	d, err := DecodeDatagram(msg)
	require.NoError(t, err)

	assert.Equal(t, uint16(0x4444), d.Header.ID)
	assert.True(t, d.Header.QR())
	assert.Equal(t, uint16(1), d.Header.QDCount)
	assert.Equal(t, uint16(1), d.Header.ANCount)

	require.Len(t, d.Questions, 1)
	q := d.Questions[0]
	assert.Equal(t, "www.google.com", q.Name.String())
	assert.Equal(t, uint16(1), q.Type)
	assert.Equal(t, uint16(1), q.Class)

	require.Len(t, d.Answers, 1)
	a := d.Answers[0]
	assert.Equal(t, "www.google.com", a.Name.String())
	assert.Equal(t, uint16(1), a.Type)
	assert.Equal(t, uint16(1), a.Class)
	assert.Equal(t, uint32(360), a.TTL)
	assert.Equal(t, []byte{127, 0, 0, 1}, a.RData)
}

func TestDatagram_EncodeMatchesScenario1Bytes(t *testing.T) {
	msg := scenario1()
	d, err := DecodeDatagram(msg)
	require.NoError(t, err)

	out, err := d.Marshal()
	require.NoError(t, err)
	assert.Equal(t, msg, out)
}

func TestDecodeDatagram_TrailingBytesTolerated(t *testing.T) {
	msg := append(scenario1(), 0xDE, 0xAD, 0xBE, 0xEF)
	_, err := DecodeDatagram(msg)
	require.NoError(t, err)
}

func TestDecodeDatagram_Truncated(t *testing.T) {
	msg := scenario1()
	_, err := DecodeDatagram(msg[:20])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDatagram_MarshalSharesOneCompressionTableAcrossSections(t *testing.T) {
	name := mustName(t, "shared.example.com")
	d := Datagram{
		Header:    NewReply(),
		Questions: []Question{{Name: name, Type: uint16(TypeA), Class: uint16(ClassIN)}},
		Answers: []ResourceRecord{
			{Name: name, Type: uint16(TypeA), Class: uint16(ClassIN), TTL: 60, RData: []byte{1, 2, 3, 4}},
			{Name: name, Type: uint16(TypeA), Class: uint16(ClassIN), TTL: 60, RData: []byte{5, 6, 7, 8}},
		},
	}
	out, err := d.Marshal()
	require.NoError(t, err)

	decoded, err := DecodeDatagram(out)
	require.NoError(t, err)
	require.Len(t, decoded.Answers, 2)
	assert.Equal(t, "shared.example.com", decoded.Answers[0].Name.String())
	assert.Equal(t, "shared.example.com", decoded.Answers[1].Name.String())

	// Re-encoding never grows: the second answer's name must have compressed
	// against either the question or the first answer.
	reEncoded, err := decoded.Marshal()
	require.NoError(t, err)
	assert.LessOrEqual(t, len(reEncoded), len(out))
}
