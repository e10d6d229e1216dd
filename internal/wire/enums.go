package wire

// Flag bit positions within Header.Flags (RFC 1035 Section 4.1.1), the
// layout spec.md §3 calls "flags byte 1 (QR, OPCODE[4], AA, TC, RD)" and
// "flags byte 2 (RA, Z, AD, CD, RCODE[4])" packed into one big-endian u16.
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   OPCODE  |AA|TC|RD|RA| Z|AD|CD|   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	 15 14 13 12 11 10  9  8  7  6  5  4  3  2  1  0
const (
	flagQR     uint16 = 0x8000
	flagOpcode uint16 = 0x7800
	flagAA     uint16 = 0x0400
	flagTC     uint16 = 0x0200
	flagRD     uint16 = 0x0100
	flagRA     uint16 = 0x0080
	flagZ      uint16 = 0x0040
	flagAD     uint16 = 0x0020
	flagCD     uint16 = 0x0010
	flagRCode  uint16 = 0x000F

	opcodeShift = 11
)

// Opcode is the 4-bit OPCODE field. Unknown values round-trip losslessly:
// the type is a plain numeric alias, not a closed set.
type Opcode uint16

const (
	OpcodeQuery  Opcode = 0
	OpcodeIQuery Opcode = 1
	OpcodeStatus Opcode = 2
)

// RecordType is the 16-bit TYPE/QTYPE field (RFC 1035 Section 3.2.2).
type RecordType uint16

const (
	TypeA     RecordType = 1
	TypeNS    RecordType = 2
	TypeCNAME RecordType = 5
	TypeSOA   RecordType = 6
	TypePTR   RecordType = 12
	TypeMX    RecordType = 15
	TypeTXT   RecordType = 16
	TypeAAAA  RecordType = 28
	TypeOPT   RecordType = 41
)

// RecordClass is the 16-bit CLASS/QCLASS field (RFC 1035 Section 3.2.4).
type RecordClass uint16

const (
	ClassIN RecordClass = 1
)

// RCode is the 4-bit RCODE field (RFC 1035 Section 4.1.1).
type RCode uint16

const (
	RCodeNoError  RCode = 0
	RCodeFormErr  RCode = 1
	RCodeServFail RCode = 2
	RCodeNXDomain RCode = 3
	RCodeNotImp   RCode = 4
	RCodeRefused  RCode = 5
)
