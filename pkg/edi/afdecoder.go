package edi

import (
	"github.com/dbehnke/dabmod/pkg/crc"
	"github.com/dbehnke/dabmod/pkg/daberr"
)

// afMinLen is the minimum number of bytes needed to read an AF header:
// 'A','F' + 4-byte length + 2-byte seq + flags + payload type.
const afMinLen = 10

// AFPacket is a parsed AF packet header plus its tag-packet payload.
type AFPacket struct {
	Length      uint32
	Seq         uint16
	CRCPresent  bool
	MajorRev    uint8
	MinorRev    uint8
	PayloadType byte
	Payload     []byte
}

// AFDecoder validates AF packet framing and CRC and tracks sequence
// continuity across packets.
type AFDecoder struct {
	haveLastSeq bool
	lastSeq     uint16
}

// NewAFDecoder creates a decoder with no prior sequence state.
func NewAFDecoder() *AFDecoder { return &AFDecoder{} }

// Decode parses one AF packet from buf. buf must hold at least L+12 bytes
// where L is the declared payload length; Decode does not consume partial
// input, it either succeeds or reports an error for what's given.
func (d *AFDecoder) Decode(buf []byte) (*AFPacket, error) {
	if len(buf) < afMinLen {
		return nil, daberr.NewProtocol("AF packet: only %d bytes, need at least %d", len(buf), afMinLen)
	}
	if buf[0] != 'A' || buf[1] != 'F' {
		return nil, daberr.NewProtocol("AF packet: bad sync %q%q", buf[0], buf[1])
	}
	length := uint32(buf[2])<<24 | uint32(buf[3])<<16 | uint32(buf[4])<<8 | uint32(buf[5])
	seq := uint16(buf[6])<<8 | uint16(buf[7])
	flags := buf[8]
	payloadType := buf[9]

	crcPresent := flags&0x80 != 0
	majorRev := (flags >> 4) & 0x07
	minorRev := flags & 0x0F

	total := int(length) + 12
	if len(buf) < total {
		return nil, daberr.NewProtocol("AF packet: declared length %d exceeds available %d bytes", total, len(buf))
	}

	got := uint16(buf[total-2])<<8 | uint16(buf[total-1])
	want := crc.CCITT16(buf[:total-2])
	if got != want {
		return nil, daberr.NewCrc("AF packet seq %d: CRC mismatch (got %#04x want %#04x)", seq, got, want)
	}

	// Sequence discontinuity is never treated as an error here; callers
	// that want to warn on it should check SeqDiscontinuity beforehand.
	d.lastSeq = seq
	d.haveLastSeq = true

	if payloadType != 'T' {
		return nil, daberr.NewProtocol("AF packet seq %d: unsupported payload type %q", seq, payloadType)
	}

	return &AFPacket{
		Length:      length,
		Seq:         seq,
		CRCPresent:  crcPresent,
		MajorRev:    majorRev,
		MinorRev:    minorRev,
		PayloadType: payloadType,
		Payload:     buf[10 : 10+int(length)],
	}, nil
}

// SeqDiscontinuity reports whether seq is not the immediate successor of
// the last decoded sequence number, for callers that want to log a
// warning without treating it as an error.
func (d *AFDecoder) SeqDiscontinuity(seq uint16) bool {
	return d.haveLastSeq && seq != d.lastSeq+1
}
