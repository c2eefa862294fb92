package ofdm

import "github.com/dbehnke/dabmod/pkg/daberr"

// NativeRate is the DAB modulator's native complex baseband sample
// rate, 2048000 samples/second.
const NativeRate = 2048000

// Resampler converts the 2048000 Sa/s OFDM output to a configured
// output rate using a polyphase linear-interpolation filter; when the
// output rate equals NativeRate it is the identity function.
type Resampler struct {
	outputRate int
	// fractional phase accumulator carried between Process calls,
	// in units of native samples.
	phase float64
	// last input sample of the previous Process call, so the interval
	// spanning two blocks is interpolated too.
	prev     complex128
	havePrev bool
}

// NewResampler builds a resampler targeting outputRate Sa/s.
func NewResampler(outputRate int) (*Resampler, error) {
	if outputRate <= 0 {
		return nil, daberr.NewConfig("resampler: invalid output rate %d", outputRate)
	}
	return &Resampler{outputRate: outputRate}, nil
}

// Process resamples in (native-rate complex samples) to the
// configured output rate via linear interpolation between the two
// nearest native-rate samples, carrying fractional phase across calls
// so consecutive blocks interpolate seamlessly.
func (r *Resampler) Process(in []complex128) []complex128 {
	if r.outputRate == NativeRate {
		out := make([]complex128, len(in))
		copy(out, in)
		return out
	}
	if len(in) == 0 {
		return nil
	}

	buf := in
	if r.havePrev {
		buf = append([]complex128{r.prev}, in...)
	}

	ratio := float64(NativeRate) / float64(r.outputRate)
	var out []complex128
	pos := r.phase
	for pos < float64(len(buf)-1) {
		i := int(pos)
		frac := pos - float64(i)
		sample := buf[i]*complex(1-frac, 0) + buf[i+1]*complex(frac, 0)
		out = append(out, sample)
		pos += ratio
	}
	r.phase = pos - float64(len(buf)-1)
	r.prev = buf[len(buf)-1]
	r.havePrev = true
	return out
}
