package edi

import (
	"testing"

	"github.com/dbehnke/dabmod/pkg/crc"
)

func buildFragment(pseq uint16, findex, fcount uint32, fec bool, payload []byte, rsK, rsZ uint8) []byte {
	buf := []byte{'P', 'F'}
	buf = append(buf, byte(pseq>>8), byte(pseq))
	buf = append(buf, byte(findex>>16), byte(findex>>8), byte(findex))
	buf = append(buf, byte(fcount>>16), byte(fcount>>8), byte(fcount))
	plen := uint16(len(payload))
	flags := byte(plen >> 8 & 0x3F)
	if fec {
		flags |= 0x80
	}
	buf = append(buf, flags, byte(plen&0xFF))
	if fec {
		buf = append(buf, rsK, rsZ)
	}
	buf = crc.Append(buf)
	buf = append(buf, payload...)
	return buf
}

func TestParseFragmentNeedsMoreBytes(t *testing.T) {
	if n, f, err := ParseFragment(nil); n != 0 || f != nil || err != nil {
		t.Fatalf("empty input: got (%d, %v, %v)", n, f, err)
	}
	full := buildFragment(1, 0, 4, false, []byte{0xAA, 0xBB}, 0, 0)
	if n, f, err := ParseFragment(full[:len(full)-1]); n != 0 || f != nil || err != nil {
		t.Fatalf("truncated input: got (%d, %v, %v)", n, f, err)
	}
}

func TestParseFragmentBadSync(t *testing.T) {
	buf := buildFragment(1, 0, 4, false, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, 0, 0)
	buf[0] = 'X'
	if _, _, err := ParseFragment(buf); err == nil {
		t.Fatalf("expected ProtocolError on bad sync")
	}
}

func TestParseFragmentNoFEC(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	buf := buildFragment(42, 2, 5, false, payload, 0, 0)
	extra := []byte{0x99}
	n, f, err := ParseFragment(append(buf, extra...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if f.PSeq != 42 || f.FIndex != 2 || f.FCount != 5 || f.FEC {
		t.Fatalf("unexpected fragment fields: %+v", f)
	}
	if string(f.Payload) != string(payload) {
		t.Fatalf("payload mismatch: %v", f.Payload)
	}
}

func TestParseFragmentFECHeaderCRC(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	buf := buildFragment(7, 0, 10, true, payload, 207, 3)
	_, f, err := ParseFragment(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Invalid {
		t.Fatalf("fragment unexpectedly marked invalid")
	}
	if f.RSK != 207 || f.RSZ != 3 {
		t.Fatalf("rs fields mismatch: %+v", f)
	}

	// Corrupt a header byte (not the CRC) and confirm the mismatch is
	// flagged rather than rejected outright, so the stream resynchronises.
	corrupt := append([]byte(nil), buf...)
	corrupt[4] ^= 0xFF
	n, f2, err := ParseFragment(corrupt)
	if err != nil {
		t.Fatalf("unexpected hard error on CRC mismatch: %v", err)
	}
	if n == 0 || f2 == nil {
		t.Fatalf("expected a consumed, invalid fragment")
	}
	if !f2.Invalid {
		t.Fatalf("expected fragment to be marked invalid on header CRC mismatch")
	}
}
