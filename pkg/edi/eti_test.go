package edi

import "testing"

// TestETIWriterS3Skeleton implements scenario S3: an AF containing *ptr =
// "DETI",0,0, deti with atstf=0, ficf=1, mid=1, fp=0, fct=0, FIC = 96
// bytes of 0x00, and no est* tags produces a 6144-byte ETI frame that
// starts with ERR=0x00 and FSYNC-even 0x07 0x3A 0xB6, and ends with a
// 0x55 padding byte.
func TestETIWriterS3Skeleton(t *testing.T) {
	w := NewETIWriter()
	disp := NewTagDispatcher()

	ptr := buildTagItem("*ptr", append([]byte("DETI"), 0, 0, 0, 0))

	detiHeader := []byte{0x40, 0x00} // ficf set, atstf clear, fct=0
	detiETI := []byte{0x00, 0x40, 0x00, 0x00} // mid=1 in the top 2 bits, fp=0
	fic := make([]byte, 96)
	detiVal := append(append([]byte{}, detiHeader...), detiETI...)
	detiVal = append(detiVal, fic...)
	deti := buildTagItem("deti", detiVal)

	buf := append(append([]byte{}, ptr...), deti...)
	if err := disp.Dispatch(w, buf); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	frame, err := w.Assemble()
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(frame) != ETIFrameSize {
		t.Fatalf("frame length = %d, want %d", len(frame), ETIFrameSize)
	}
	want := []byte{0x00, 0x07, 0x3A, 0xB6}
	for i, b := range want {
		if frame[i] != b {
			t.Fatalf("frame[%d] = %#02x, want %#02x", i, frame[i], b)
		}
	}
	if frame[ETIFrameSize-1] != 0x55 {
		t.Fatalf("last byte = %#02x, want 0x55", frame[ETIFrameSize-1])
	}
}

func buildTagItem(name string, value []byte) []byte {
	buf := []byte(name)
	bitLen := uint32(len(value)) * 8
	buf = append(buf, byte(bitLen>>24), byte(bitLen>>16), byte(bitLen>>8), byte(bitLen))
	return append(buf, value...)
}

func TestETIFrameExactly6144ForAllModes(t *testing.T) {
	// Property 1: every emitted ETI frame is exactly 6144 bytes, checked
	// for every MID value, each with one subchannel.
	for _, mid := range []uint8{0, 1, 2, 3} {
		w := NewETIWriter()
		disp := NewTagDispatcher()
		ptr := buildTagItem("*ptr", append([]byte("DETI"), 0, 0, 0, 0))
		detiHeader := []byte{0x40, 0x00}
		ethHigh := byte(mid) << 6
		detiETI := []byte{0x00, ethHigh, 0x00, 0x00}
		fic := make([]byte, expectedFICLen(mid))
		detiVal := append(append([]byte{}, detiHeader...), detiETI...)
		detiVal = append(detiVal, fic...)
		deti := buildTagItem("deti", detiVal)

		est := buildTagItem("est1", append([]byte{0x00, 0x00, 0x00}, make([]byte, 8)...))

		buf := append(append([]byte{}, ptr...), deti...)
		buf = append(buf, est...)
		if err := disp.Dispatch(w, buf); err != nil {
			t.Fatalf("mid %d: Dispatch failed: %v", mid, err)
		}
		frame, err := w.Assemble()
		if err != nil {
			t.Fatalf("mid %d: Assemble failed: %v", mid, err)
		}
		if len(frame) != ETIFrameSize {
			t.Fatalf("mid %d: frame length = %d, want %d", mid, len(frame), ETIFrameSize)
		}
	}
}

func TestETIWriterRejectsTagBeforeProtocol(t *testing.T) {
	w := NewETIWriter()
	disp := NewTagDispatcher()
	deti := buildTagItem("deti", make([]byte, 102))
	if err := disp.Dispatch(w, deti); err == nil {
		t.Fatalf("expected ProtocolViolation for deti before *ptr")
	}
}

func TestETIWriterMNSCDefaultsWhenAbsent(t *testing.T) {
	w := NewETIWriter()
	if w.MNSC != 0xFFFF {
		t.Fatalf("MNSC default = %#04x, want 0xffff", w.MNSC)
	}
}
