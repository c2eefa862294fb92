package crc

import "testing"

func TestCCITT16ResidueIsConstant(t *testing.T) {
	// CRC16(bytes || crc16(bytes)) evaluates to the same constant residue
	// regardless of the message, for a fixed poly/init/xor-out combination.
	msgs := [][]byte{
		{0x01, 0x02, 0x03, 0x04},
		[]byte("a single message"),
		make([]byte, 37),
	}
	var residue uint16
	for i, data := range msgs {
		c := CCITT16(data)
		withCRC := append(append([]byte{}, data...), byte(c>>8), byte(c))
		got := CCITT16(withCRC)
		if i == 0 {
			residue = got
		} else if got != residue {
			t.Fatalf("residue for message %d = %#04x, want %#04x", i, got, residue)
		}
		if !Check(withCRC) {
			t.Fatalf("Check failed on freshly appended CRC for message %d", i)
		}
	}
}

func TestCCITT16EmptyInput(t *testing.T) {
	// init 0xFFFF XORed with the final 0xFFFF cancels out for zero-length input.
	if got := CCITT16(nil); got != 0x0000 {
		t.Fatalf("CRC of empty input = %#04x, want 0x0000", got)
	}
}

func TestCCITT16KnownCheckValue(t *testing.T) {
	// Check value for poly 0x1021, init 0xFFFF, final XOR 0xFFFF over the
	// ASCII string "123456789": the complement of CCITT-FALSE's 0x29B1.
	if got := CCITT16([]byte("123456789")); got != 0xD64E {
		t.Fatalf("CRC(\"123456789\") = %#04x, want 0xd64e", got)
	}
}

func TestAppendRoundTrip(t *testing.T) {
	data := []byte("the quick brown fox")
	withCRC := Append(append([]byte{}, data...))
	if len(withCRC) != len(data)+2 {
		t.Fatalf("Append length = %d, want %d", len(withCRC), len(data)+2)
	}
	if !Check(withCRC) {
		t.Fatalf("Check failed on Append output")
	}
	withCRC[0] ^= 0xFF
	if Check(withCRC) {
		t.Fatalf("Check should fail after corrupting data")
	}
}
