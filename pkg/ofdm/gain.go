package ofdm

import (
	"math"
	"math/cmplx"

	"github.com/dbehnke/dabmod/pkg/daberr"
)

// GainMode selects how GainControl scales the transmission frame
// before it leaves the modulator.
type GainMode int

const (
	// GainFix scales every sample by a constant factor.
	GainFix GainMode = iota
	// GainMax scales each frame so its peak magnitude equals factor.
	GainMax
	// GainVar scales each frame by factor divided by the frame's
	// estimated RMS magnitude.
	GainVar
)

// GainControl applies one of the Fix/Max/Var output-gain strategies
// described for the modulator's final stage.
type GainControl struct {
	mode   GainMode
	factor float64
}

// NewGainControl builds a gain control stage. factor must be positive.
func NewGainControl(mode GainMode, factor float64) (*GainControl, error) {
	if factor <= 0 {
		return nil, daberr.NewConfig("gain control: factor %f must be positive", factor)
	}
	switch mode {
	case GainFix, GainMax, GainVar:
	default:
		return nil, daberr.NewConfig("gain control: unknown mode %d", mode)
	}
	return &GainControl{mode: mode, factor: factor}, nil
}

// Apply scales samples in place according to the configured mode.
// samples is expected to cover one full transmission frame when mode
// is GainMax or GainVar, since both measure the frame before scaling it.
func (g *GainControl) Apply(samples []complex128) {
	var scale float64
	switch g.mode {
	case GainFix:
		scale = g.factor
	case GainMax:
		peak := 0.0
		for _, s := range samples {
			if mag := cmplx.Abs(s); mag > peak {
				peak = mag
			}
		}
		if peak == 0 {
			return
		}
		scale = g.factor / peak
	case GainVar:
		sumSq := 0.0
		for _, s := range samples {
			mag := cmplx.Abs(s)
			sumSq += mag * mag
		}
		if len(samples) == 0 {
			return
		}
		rms := math.Sqrt(sumSq / float64(len(samples)))
		if rms == 0 {
			return
		}
		scale = g.factor / rms
	}
	for i, s := range samples {
		samples[i] = s * complex(scale, 0)
	}
}
