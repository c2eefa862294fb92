package edi

import (
	"testing"

	"github.com/dbehnke/dabmod/pkg/crc"
	"github.com/dbehnke/dabmod/pkg/daberr"
)

func buildAFPacket(seq uint16, payload []byte) []byte {
	buf := []byte{'A', 'F'}
	l := uint32(len(payload))
	buf = append(buf, byte(l>>24), byte(l>>16), byte(l>>8), byte(l))
	buf = append(buf, byte(seq>>8), byte(seq))
	buf = append(buf, 0x80, 'T') // CRC present, rev 0.0, payload type 'T'
	buf = append(buf, payload...)
	return crc.Append(buf)
}

func TestAFDecoderValidPacket(t *testing.T) {
	payload := []byte("\x00\x00\x00\x00tag data")
	buf := buildAFPacket(3, payload)
	d := NewAFDecoder()
	pkt, err := d.Decode(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkt.Seq != 3 || pkt.PayloadType != 'T' {
		t.Fatalf("unexpected packet: %+v", pkt)
	}
	if string(pkt.Payload) != string(payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestAFDecoderCRCMismatch(t *testing.T) {
	buf := buildAFPacket(1, []byte("hello"))
	buf[len(buf)-1] ^= 0xFF
	d := NewAFDecoder()
	_, err := d.Decode(buf)
	if _, ok := err.(*daberr.Crc); !ok {
		t.Fatalf("expected *daberr.Crc, got %v", err)
	}
}

func TestAFDecoderUnsupportedPayloadType(t *testing.T) {
	buf := []byte{'A', 'F', 0, 0, 0, 2, 0, 1, 0x80, 'X'}
	buf = crc.Append(append(buf, 0xAA, 0xBB))
	d := NewAFDecoder()
	_, err := d.Decode(buf)
	if _, ok := err.(*daberr.Protocol); !ok {
		t.Fatalf("expected *daberr.Protocol, got %v", err)
	}
}

func TestAFDecoderSeqDiscontinuity(t *testing.T) {
	d := NewAFDecoder()
	buf1 := buildAFPacket(1, []byte("a"))
	if _, err := d.Decode(buf1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.SeqDiscontinuity(2) {
		t.Fatalf("seq 2 after seq 1 should not be a discontinuity")
	}
	if !d.SeqDiscontinuity(5) {
		t.Fatalf("seq 5 after seq 1 should be a discontinuity")
	}
}
