package edi

import (
	"testing"

	"github.com/dbehnke/dabmod/pkg/crc"
)

func TestPFTManagerOrdersOutputByPSeq(t *testing.T) {
	m := NewPFTManager()
	pkt1 := crc.Append([]byte{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	pkt2 := crc.Append([]byte{2, 2, 2, 2, 2, 2, 2, 2, 2, 2})

	// Only pseq=5 is fed. It comes back first because output starts at the
	// first pseq ever observed; pseq=6 is then awaited, not reported ready.
	for i, by := range pkt2 {
		m.Push(&Fragment{PSeq: 5, FIndex: uint32(i), FCount: uint32(len(pkt2)), Payload: []byte{by}})
	}

	out, ready := m.GetNextAF()
	if !ready {
		t.Fatalf("expected a ready AF for pseq 5")
	}
	if string(out) != string(pkt2) {
		t.Fatalf("got %v, want %v", out, pkt2)
	}

	_ = pkt1
	if _, ready := m.GetNextAF(); ready {
		t.Fatalf("pseq 6 not pushed yet, should not be ready")
	}
}

func TestPFTManagerSkipsOnExpiry(t *testing.T) {
	m := NewPFTManager()
	m.MaxDelay = 2
	// Only one of three fragments ever arrives; lifetime = fcount*MaxDelay = 6.
	m.Push(&Fragment{PSeq: 0, FIndex: 0, FCount: 3, Payload: []byte{1}})

	var lastReady bool
	for i := 0; i < 10; i++ {
		_, ready := m.GetNextAF()
		if ready {
			lastReady = true
			break
		}
	}
	if !lastReady {
		t.Fatalf("expected next_pseq to eventually be skipped after expiry")
	}
}
