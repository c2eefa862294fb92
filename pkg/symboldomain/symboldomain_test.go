package symboldomain

import (
	"math/cmplx"
	"testing"
)

func TestQpskMapProducesUnitMagnitudeSymbols(t *testing.T) {
	in := make([]byte, 1536/4) // one mode-1 OFDM symbol's worth of input bytes
	for i := range in {
		in[i] = byte(i * 17)
	}
	out, err := QpskMap(in, 1536)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in)*4 {
		t.Fatalf("output length = %d, want %d", len(out), len(in)*4)
	}
	for i, c := range out {
		if mag := cmplx.Abs(c); mag < 0.99 || mag > 1.01 {
			t.Fatalf("symbol %d has magnitude %f, want ~1", i, mag)
		}
	}
}

func TestFrequencyInterleaverIsPermutation(t *testing.T) {
	fi, err := NewFrequencyInterleaver(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fi.Carriers() != 384 {
		t.Fatalf("carriers = %d, want 384", fi.Carriers())
	}
	in := make([]complex128, fi.Carriers())
	for i := range in {
		in[i] = complex(float64(i), 0)
	}
	out, err := fi.Process(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := make(map[float64]bool)
	for _, c := range out {
		if real(c) == 0 && imag(c) == 0 && !seen[0] {
			// zero value may legitimately appear once (input[0]); don't special-case it further.
		}
		seen[real(c)] = true
	}
	if len(seen) != len(in) {
		t.Fatalf("frequency interleaver lost values: saw %d distinct, want %d", len(seen), len(in))
	}
}

func TestPhaseReferenceCarrierCountPerMode(t *testing.T) {
	cases := map[int]int{1: 1536, 2: 384, 3: 192, 4: 768}
	for mode, carriers := range cases {
		pr, err := NewPhaseReference(mode)
		if err != nil {
			t.Fatalf("mode %d: unexpected error: %v", mode, err)
		}
		if len(pr.Symbol()) != carriers {
			t.Fatalf("mode %d: symbol length = %d, want %d", mode, len(pr.Symbol()), carriers)
		}
	}
}

func TestDifferentialModulatorFirstSymbolIsReference(t *testing.T) {
	dm := NewDifferentialModulator(4)
	phase := []complex128{1, 1, 1, 1}
	data := []complex128{complex(0, 1), complex(0, 1), complex(0, 1), complex(0, 1)}
	out, err := dm.Process(phase, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 8 {
		t.Fatalf("output length = %d, want 8", len(out))
	}
	for i := 0; i < 4; i++ {
		if out[i] != phase[i] {
			t.Fatalf("out[%d] = %v, want phase %v", i, out[i], phase[i])
		}
	}
	for i := 4; i < 8; i++ {
		if out[i] != complex(0, 1) {
			t.Fatalf("out[%d] = %v, want %v (phase*data)", i, out[i], complex(0, 1))
		}
	}
}
