package ofdm

import (
	"github.com/dbehnke/dabmod/pkg/daberr"
	"github.com/mjibson/go-dsp/fft"
)

// Generator performs the DAB OFDM modulation: each frequency-domain
// symbol of `carriers` complex values is mapped onto an FFT of size
// `spacing` (DC and the guard carriers left at zero) and inverse
// transformed to a time-domain symbol.
type Generator struct {
	carriers int
	spacing  int
}

// NewGenerator builds an OFDM generator for a transmission mode's
// carrier count and FFT size (the mode's carrier_spacing value).
func NewGenerator(carriers, spacing int) (*Generator, error) {
	if carriers <= 0 || spacing <= 0 || carriers >= spacing {
		return nil, daberr.NewConfig("ofdm generator: invalid carriers=%d spacing=%d", carriers, spacing)
	}
	return &Generator{carriers: carriers, spacing: spacing}, nil
}

// Process maps one frequency-domain data symbol onto carriers
// carriers/2 either side of DC (DC itself, and the unused high
// carriers, stay at zero) and returns the time-domain IFFT output.
func (g *Generator) Process(symbol []complex128) ([]complex128, error) {
	if len(symbol) != g.carriers {
		return nil, daberr.NewInvariant("ofdm generator: symbol length %d, want %d", len(symbol), g.carriers)
	}
	bins := make([]complex128, g.spacing)
	half := g.carriers / 2
	for k := 0; k < half; k++ {
		bins[k+1] = symbol[half+k]           // positive frequencies, carrier 0 excluded (DC)
		bins[g.spacing-half+k] = symbol[k]   // negative frequencies wrap to the top of the FFT
	}
	return fft.IFFT(bins), nil
}
