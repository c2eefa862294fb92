package bitdomain

import "github.com/dbehnke/dabmod/pkg/daberr"

// CifSize is the fixed Common Interleaved Frame size, 864 capacity
// units of 8 bytes (64 bits) each, the same for every transmission mode.
const CifSize = 864 * 8

var blockPartitionerModes = map[int]struct {
	ficSize  int
	cifCount int
}{
	1: {ficSize: 288, cifCount: 4},
	2: {ficSize: 288, cifCount: 1},
	3: {ficSize: 384, cifCount: 1},
	4: {ficSize: 288, cifCount: 2},
}

// BlockPartitioner groups one FIC and cifCount CIFs into a single
// output transmission frame, dropping leading CIFs until the
// configured phase is reached so multiple subchannel sources stay
// synchronised to the same ensemble frame boundary.
type BlockPartitioner struct {
	ficSize  int
	cifCount int
	cifNb    int
	cifPhase int
}

// NewBlockPartitioner builds a partitioner for the given transmission
// mode. When phase % cifCount is non-zero, the first
// cifCount - phase%cifCount CIFs are dropped before accumulation starts.
func NewBlockPartitioner(mode, phase int) (*BlockPartitioner, error) {
	m, ok := blockPartitionerModes[mode]
	if !ok {
		return nil, daberr.NewConfig("block partitioner: invalid transmission mode %d", mode)
	}
	return &BlockPartitioner{
		ficSize:  m.ficSize,
		cifCount: m.cifCount,
		cifPhase: phase % m.cifCount,
	}, nil
}

// OutputFramesize is the byte length of a complete output transmission frame.
func (p *BlockPartitioner) OutputFramesize() int {
	return p.cifCount * (p.ficSize + CifSize)
}

// Process appends one (fic, cif) pair into out at the partitioner's
// current position. It returns true when out now holds a complete
// frame (out must then be reset/resized by the caller before the next
// call), and false while still accumulating or dropping a sync CIF.
func (p *BlockPartitioner) Process(fic, cif []byte, out []byte) (bool, error) {
	if len(fic) != p.ficSize {
		return false, daberr.NewInvariant("block partitioner FIC size %d, want %d", len(fic), p.ficSize)
	}
	if len(cif) != CifSize {
		return false, daberr.NewInvariant("block partitioner CIF size %d, want %d", len(cif), CifSize)
	}
	if len(out) != p.OutputFramesize() {
		return false, daberr.NewInvariant("block partitioner output buffer size %d, want %d", len(out), p.OutputFramesize())
	}

	if p.cifPhase != 0 {
		p.cifPhase++
		if p.cifPhase == p.cifCount {
			p.cifPhase = 0
		}
		return false, nil
	}

	copy(out[p.cifNb*p.ficSize:], fic)
	copy(out[p.cifCount*p.ficSize+p.cifNb*CifSize:], cif)

	p.cifNb++
	if p.cifNb == p.cifCount {
		p.cifNb = 0
		return true, nil
	}
	return false, nil
}
