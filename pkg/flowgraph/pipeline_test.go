package flowgraph

import (
	"testing"

	"github.com/dbehnke/dabmod/pkg/bitdomain"
	"github.com/dbehnke/dabmod/pkg/ofdm"
	"github.com/dbehnke/dabmod/pkg/subchannel"
)

func TestBitChainProducesInterleavedOutput(t *testing.T) {
	sc := subchannel.Subchannel{SCID: 1, Framesize: 3 * 64, TPL: 0x20} // EEP option0 level1, 64kb/s
	rules, err := sc.Rules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tail := subchannel.TailRule()
	probe := bitdomain.NewPuncturingEncoder(rules, &tail)
	bc, err := NewBitChain(rules, true, probe.OutputSize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := make([]byte, sc.Framesize)
	for i := range in {
		in[i] = byte(i * 13)
	}

	out, err := bc.Process(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != probe.OutputSize() {
		t.Fatalf("bit chain output length = %d, want %d", len(out), probe.OutputSize())
	}
}

func TestSymbolPipelineMode2SingleCifCompletesImmediately(t *testing.T) {
	sp, err := NewSymbolPipeline(2, 2048000, ofdm.GainFix, 1.0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fic := make([]byte, 288)
	cif := make([]byte, bitdomain.CifSize)

	out, err := sp.Process(fic, cif)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil {
		t.Fatal("mode 2 has cif_count=1, expected a completed frame on the first call")
	}
}

func TestSymbolPipelineMode1AccumulatesBeforeCompleting(t *testing.T) {
	sp, err := NewSymbolPipeline(1, 2048000, ofdm.GainFix, 1.0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fic := make([]byte, 288)
	cif := make([]byte, bitdomain.CifSize)

	for i := 0; i < 3; i++ {
		out, err := sp.Process(fic, cif)
		if err != nil {
			t.Fatalf("cif %d: unexpected error: %v", i, err)
		}
		if out != nil {
			t.Fatalf("cif %d: unexpected completed frame before 4 CIFs", i)
		}
	}
	out, err := sp.Process(fic, cif)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == nil {
		t.Fatal("expected a completed frame after the 4th CIF")
	}
}
