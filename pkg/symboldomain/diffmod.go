package symboldomain

import "github.com/dbehnke/dabmod/pkg/daberr"

// DifferentialModulator turns a sequence of QPSK data symbols into
// pi/4-DQPSK carriers by multiplying each OFDM symbol's carriers by
// the previous symbol's carriers, seeded by the phase reference.
type DifferentialModulator struct {
	carriers int
}

// NewDifferentialModulator builds a modulator for a fixed carrier count.
func NewDifferentialModulator(carriers int) *DifferentialModulator {
	return &DifferentialModulator{carriers: carriers}
}

// Process differentially encodes dataSymbols (a concatenation of
// whole OFDM symbols, each as long as the carrier count given to
// NewDifferentialModulator) against phase, returning
// phase followed by the differentially modulated symbols in order.
func (dm *DifferentialModulator) Process(phase, dataSymbols []complex128) ([]complex128, error) {
	if len(phase) != dm.carriers {
		return nil, daberr.NewInvariant("differential modulator: phase length %d, want %d", len(phase), dm.carriers)
	}
	if len(dataSymbols)%dm.carriers != 0 {
		return nil, daberr.NewInvariant("differential modulator: data length %d not a multiple of %d", len(dataSymbols), dm.carriers)
	}

	out := make([]complex128, len(phase)+len(dataSymbols))
	copy(out, phase)

	prevBase := 0
	for base := 0; base < len(dataSymbols); base += dm.carriers {
		outBase := len(phase) + base
		for j := 0; j < dm.carriers; j++ {
			out[outBase+j] = out[prevBase+j] * dataSymbols[base+j]
		}
		prevBase = outBase
	}
	return out, nil
}
