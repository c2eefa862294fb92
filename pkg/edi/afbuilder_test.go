package edi

import (
	"testing"

	"github.com/dbehnke/dabmod/pkg/crc"
	"github.com/klauspost/reedsolomon"
)

func fragmentWithPayload(pseq uint16, findex, fcount uint32, payload []byte) *Fragment {
	return &Fragment{PSeq: pseq, FIndex: findex, FCount: fcount, Payload: payload}
}

func TestAFBuilderNoFECExactMatch(t *testing.T) {
	body := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	full := crc.Append(body) // 12 bytes, property 2 of spec.md section 8
	b := NewAFBuilder(1)
	for i, by := range full {
		b.Push(fragmentWithPayload(1, uint32(i), uint32(len(full)), []byte{by}))
	}
	if got := b.DecodeAttempt(); got != DecodeYes {
		t.Fatalf("DecodeAttempt = %v, want DecodeYes", got)
	}
	out, ok := b.Extract()
	if !ok {
		t.Fatalf("Extract failed")
	}
	if string(out) != string(full) {
		t.Fatalf("extracted %v, want %v (bit-identical to no-FEC concatenation)", out, full)
	}
}

func TestAFBuilderNoFECMissingFragment(t *testing.T) {
	b := NewAFBuilder(1)
	b.Push(fragmentWithPayload(1, 0, 3, []byte{1}))
	b.Push(fragmentWithPayload(1, 2, 3, []byte{3}))
	if got := b.DecodeAttempt(); got != DecodeNo {
		t.Fatalf("DecodeAttempt = %v, want DecodeNo with a gap", got)
	}
	if _, ok := b.Extract(); ok {
		t.Fatalf("Extract should fail with a missing fragment")
	}
}

// TestAFBuilderRSRecovery exercises the RS-recovery property (S4): an AF
// packet fragmented with FEC survives the loss of up to 48 fragments out
// of its RS block. The fragment count here (14 data + 48 parity = 62) is
// scaled down from the literal scenario's 255-fragment RS(255,207) block
// for test speed, but exercises the identical erasure-recovery contract:
// one byte per fragment (plen=1), 48 parity shards, up to 48 erasures.
func TestAFBuilderRSRecovery(t *testing.T) {
	const rsK = 14
	const fcount = rsK + 48

	body := make([]byte, rsK-2)
	for i := range body {
		body[i] = byte(i*7 + 3)
	}
	original := crc.Append(body) // rsK bytes total, valid inner AF CRC

	enc, err := reedsolomon.New(rsK, 48)
	if err != nil {
		t.Fatalf("reedsolomon.New: %v", err)
	}
	shards := make([][]byte, fcount)
	for i := 0; i < rsK; i++ {
		shards[i] = []byte{original[i]}
	}
	for i := rsK; i < fcount; i++ {
		shards[i] = []byte{0}
	}
	if err := enc.Encode(shards); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	b := NewAFBuilder(9)
	// Delete 48 arbitrary fragments (every other one, wrapping), leaving
	// exactly rsK present — the tightest case RS(255,rsK) must still solve.
	dropped := make(map[int]bool)
	for i := 0; i < fcount && len(dropped) < 48; i += 2 {
		dropped[i] = true
	}
	for i := 0; len(dropped) < 48; i++ {
		if !dropped[i] {
			dropped[i] = true
		}
	}
	for j := 0; j < fcount; j++ {
		if dropped[j] {
			continue
		}
		f := &Fragment{
			PSeq: 9, FIndex: uint32(j), FCount: uint32(fcount),
			FEC: true, RSK: rsK, RSZ: 0, PLen: 1,
			Payload: append([]byte(nil), shards[j]...),
		}
		b.Push(f)
	}

	if len(dropped) != 48 {
		t.Fatalf("test setup: dropped %d, want 48", len(dropped))
	}
	if got := b.DecodeAttempt(); got == DecodeNo {
		t.Fatalf("DecodeAttempt = %v, want Maybe or Yes with %d/%d fragments present", got, fcount-len(dropped), fcount)
	}

	out, ok := b.Extract()
	if !ok {
		t.Fatalf("Extract failed to recover from 48 erasures")
	}
	if string(out) != string(original) {
		t.Fatalf("recovered %v, want %v", out, original)
	}
}
