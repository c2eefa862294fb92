package bitdomain

import "github.com/dbehnke/dabmod/pkg/daberr"

// TimeInterleaver implements the DAB time interleaver (ETS 300 401
// clause 11.3): a convolutional bit interleaver with 16 branches of
// increasing depth, applied in place across the stream of CIFs.
type TimeInterleaver struct {
	framesize int
	history   [16][]byte
}

// NewTimeInterleaver allocates a time interleaver for frames of the
// given size, which must be a multiple of 2.
func NewTimeInterleaver(framesize int) (*TimeInterleaver, error) {
	if framesize&1 != 0 {
		return nil, daberr.NewInvariant("time interleaver framesize %d must be even", framesize)
	}
	ti := &TimeInterleaver{framesize: framesize}
	for i := range ti.history {
		ti.history[i] = make([]byte, framesize)
	}
	return ti, nil
}

// Process interleaves one frame of input against the rolling 16-deep
// history and returns the interleaved output of the same length.
func (ti *TimeInterleaver) Process(in []byte) ([]byte, error) {
	if len(in) != ti.framesize {
		return nil, daberr.NewInvariant("time interleaver input size %d, want %d", len(in), ti.framesize)
	}
	out := make([]byte, ti.framesize)

	// Rotate history: newest frame becomes history[0].
	last := ti.history[15]
	copy(last, last) // no-op, keeps the slice backing array for reuse
	for i := 15; i > 0; i-- {
		ti.history[i] = ti.history[i-1]
	}
	ti.history[0] = last

	for i, j := 0, 0; i < ti.framesize; {
		ti.history[0][j] = in[i]
		out[i] = ti.history[0][j] & 0x80
		out[i] |= ti.history[8][j] & 0x40
		out[i] |= ti.history[4][j] & 0x20
		out[i] |= ti.history[12][j] & 0x10
		out[i] |= ti.history[2][j] & 0x08
		out[i] |= ti.history[10][j] & 0x04
		out[i] |= ti.history[6][j] & 0x02
		out[i] |= ti.history[14][j] & 0x01
		i++
		j++

		ti.history[0][j] = in[i]
		out[i] = ti.history[1][j] & 0x80
		out[i] |= ti.history[9][j] & 0x40
		out[i] |= ti.history[5][j] & 0x20
		out[i] |= ti.history[13][j] & 0x10
		out[i] |= ti.history[3][j] & 0x08
		out[i] |= ti.history[11][j] & 0x04
		out[i] |= ti.history[7][j] & 0x02
		out[i] |= ti.history[15][j] & 0x01
		i++
		j++
	}

	return out, nil
}
