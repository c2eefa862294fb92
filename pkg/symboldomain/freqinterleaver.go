package symboldomain

import "github.com/dbehnke/dabmod/pkg/daberr"

var freqInterleaverModes = map[int]struct {
	carriers int
	num      int
	beta     int
}{
	1: {carriers: 1536, num: 2048, beta: 511},
	2: {carriers: 384, num: 512, beta: 127},
	3: {carriers: 192, num: 256, beta: 63},
	4: {carriers: 768, num: 1024, beta: 255},
}

// FrequencyInterleaver permutes one OFDM symbol's worth of QPSK data
// symbols onto carrier indices, per the pseudo-random frequency
// interleaving recursion of ETS 300 401 clause 14.6: R_{j+1} =
// (13*R_j + beta) mod num, keeping indices that fall within the used
// carrier band and excluding the DC carrier.
type FrequencyInterleaver struct {
	carriers int
	indexes  []int
}

// NewFrequencyInterleaver builds the fixed carrier permutation table
// for a transmission mode (mode 0 is treated as mode 4, per the
// reference implementation's convention).
func NewFrequencyInterleaver(mode int) (*FrequencyInterleaver, error) {
	if mode == 0 {
		mode = 4
	}
	cfg, ok := freqInterleaverModes[mode]
	if !ok {
		return nil, daberr.NewConfig("frequency interleaver: invalid transmission mode %d", mode)
	}

	fi := &FrequencyInterleaver{carriers: cfg.carriers}
	perm := 0
	half := (cfg.num - cfg.carriers) / 2
	for j := 1; j < cfg.num; j++ {
		perm = (13*perm + cfg.beta) & (cfg.num - 1)
		if perm >= half && perm <= cfg.num-half && perm != cfg.num/2 {
			var idx int
			if perm > cfg.num/2 {
				idx = perm - (1 + cfg.num/2)
			} else {
				idx = perm + (cfg.carriers - cfg.num/2)
			}
			fi.indexes = append(fi.indexes, idx)
		}
	}
	return fi, nil
}

// Carriers is the number of data carriers this interleaver maps per OFDM symbol.
func (fi *FrequencyInterleaver) Carriers() int { return fi.carriers }

// Process interleaves one or more concatenated OFDM symbols worth of
// QPSK symbols (len(in) must be a multiple of Carriers()).
func (fi *FrequencyInterleaver) Process(in []complex128) ([]complex128, error) {
	if len(in)%fi.carriers != 0 {
		return nil, daberr.NewInvariant("frequency interleaver input length %d not a multiple of %d", len(in), fi.carriers)
	}
	out := make([]complex128, len(in))
	for base := 0; base < len(in); base += fi.carriers {
		for j := 0; j < fi.carriers; j++ {
			out[base+fi.indexes[j]] = in[base+j]
		}
	}
	return out, nil
}
