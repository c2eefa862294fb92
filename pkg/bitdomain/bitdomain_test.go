package bitdomain

import (
	"bytes"
	"testing"

	"github.com/dbehnke/dabmod/pkg/subchannel"
)

// TestScramblerIsSelfInverse covers property 4: scrambling twice with
// the same polynomial/init yields the original input.
func TestScramblerIsSelfInverse(t *testing.T) {
	in := make([]byte, 64)
	for i := range in {
		in[i] = byte(i*31 + 7)
	}
	want := append([]byte(nil), in...)

	s := NewScrambler()
	once := s.Scramble(append([]byte(nil), in...))

	s2 := NewScrambler()
	twice := s2.Scramble(append([]byte(nil), once...))

	if !bytes.Equal(twice, want) {
		t.Fatalf("scrambling twice did not reproduce input: got %v, want %v", twice, want)
	}
}

func TestConvEncodeOutputLength(t *testing.T) {
	in := make([]byte, 10)
	out := ConvEncode(in)
	if len(out) != 10*4+3 {
		t.Fatalf("conv encode output length = %d, want %d", len(out), 10*4+3)
	}
}

// TestPuncturingOutputLength covers property 5: the convolutional
// encoder followed by the puncturing engine with a standard EEP rule
// set (EEP option 0, level 1, 64 kb/s) produces the byte count the
// rule arithmetic predicts.
func TestPuncturingOutputLength(t *testing.T) {
	s := subchannel.Subchannel{Framesize: 64 * 3, TPL: 0x20} // EEP option0 level1, 64kb/s
	rules, err := s.Rules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	enc := NewPuncturingEncoder(rules, nil)

	in := make([]byte, enc.InputSize())
	out, err := enc.Process(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != enc.OutputSize() {
		t.Fatalf("output length = %d, want %d", len(out), enc.OutputSize())
	}
}

// TestTimeInterleaverIsPermutation covers property 6: the interleaver
// is a bit permutation. Branches delay their bits by 0..15 frames, so
// 16 all-ones frames followed by 15 all-zeros flush frames let every
// delayed bit out; the output must then hold exactly as many ones as
// went in.
func TestTimeInterleaverIsPermutation(t *testing.T) {
	const framesize = 8
	const dataFrames, flushFrames = 16, 15
	ti, err := NewTimeInterleaver(framesize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var totalOnes int
	for n := 0; n < dataFrames+flushFrames; n++ {
		in := make([]byte, framesize)
		if n < dataFrames {
			for i := range in {
				in[i] = 0xFF
			}
		}
		out, err := ti.Process(in)
		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", n, err)
		}
		for _, b := range out {
			for mask := byte(0x80); mask != 0; mask >>= 1 {
				if b&mask != 0 {
					totalOnes++
				}
			}
		}
	}
	if want := dataFrames * framesize * 8; totalOnes != want {
		t.Fatalf("interleaver dropped bits: %d ones out, want %d", totalOnes, want)
	}
}

func TestBlockPartitionerMode2SingleCIF(t *testing.T) {
	p, err := NewBlockPartitioner(2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fic := make([]byte, 288)
	cif := make([]byte, CifSize)
	out := make([]byte, p.OutputFramesize())
	complete, err := p.Process(fic, cif, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !complete {
		t.Fatalf("mode 2 has cifCount=1, expected a complete frame after one CIF")
	}
	if p.OutputFramesize() != 288+CifSize {
		t.Fatalf("output framesize = %d, want %d", p.OutputFramesize(), 288+CifSize)
	}
}

func TestBlockPartitionerMode1AccumulatesFourCIFs(t *testing.T) {
	p, err := NewBlockPartitioner(1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fic := make([]byte, 288)
	cif := make([]byte, CifSize)
	for i := 0; i < 3; i++ {
		out := make([]byte, p.OutputFramesize())
		complete, err := p.Process(fic, cif, out)
		if err != nil {
			t.Fatalf("cif %d: unexpected error: %v", i, err)
		}
		if complete {
			t.Fatalf("cif %d: unexpected complete frame before 4 CIFs", i)
		}
	}
	out := make([]byte, p.OutputFramesize())
	complete, err := p.Process(fic, cif, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !complete {
		t.Fatalf("expected complete frame after 4 CIFs")
	}
}
