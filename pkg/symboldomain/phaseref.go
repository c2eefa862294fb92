package symboldomain

import "github.com/dbehnke/dabmod/pkg/daberr"

// hTable holds ETS 300 401 Table 43 (clause 14.3.2) h_{i,k} values.
var hTable = [4][32]uint8{
	{0, 2, 0, 0, 0, 0, 1, 1, 2, 0, 0, 0, 2, 2, 1, 1,
		0, 2, 0, 0, 0, 0, 1, 1, 2, 0, 0, 0, 2, 2, 1, 1},
	{0, 3, 2, 3, 0, 1, 3, 0, 2, 1, 2, 3, 2, 3, 3, 0,
		0, 3, 2, 3, 0, 1, 3, 0, 2, 1, 2, 3, 2, 3, 3, 0},
	{0, 0, 0, 2, 0, 2, 1, 3, 2, 2, 0, 2, 2, 0, 1, 3,
		0, 0, 0, 2, 0, 2, 1, 3, 2, 2, 0, 2, 2, 0, 1, 3},
	{0, 1, 2, 1, 0, 3, 3, 2, 2, 3, 2, 1, 2, 1, 3, 2,
		0, 1, 2, 1, 0, 3, 3, 2, 2, 3, 2, 1, 2, 1, 3, 2},
}

type phaseTableEntry struct {
	i int
	n int
}

var phaseTables = [4][]phaseTableEntry{
	{ // Mode 0/4
		{0, 0}, {3, 1}, {2, 0}, {1, 2}, {0, 0}, {3, 1},
		{2, 2}, {1, 2}, {0, 2}, {3, 1}, {2, 3}, {1, 0},
		{0, 0}, {1, 1}, {2, 1}, {3, 2}, {0, 2}, {1, 2},
		{2, 0}, {3, 3}, {0, 3}, {1, 1}, {2, 3}, {3, 2},
	},
	{ // Mode 1
		{0, 3}, {3, 1}, {2, 1}, {1, 1}, {0, 2}, {3, 2},
		{2, 1}, {1, 0}, {0, 2}, {3, 2}, {2, 3}, {1, 3},
		{0, 0}, {3, 2}, {2, 1}, {1, 3}, {0, 3}, {3, 3},
		{2, 3}, {1, 0}, {0, 3}, {3, 0}, {2, 1}, {1, 1},
		{0, 1}, {1, 2}, {2, 0}, {3, 1}, {0, 3}, {1, 2},
		{2, 2}, {3, 3}, {0, 2}, {1, 1}, {2, 2}, {3, 3},
		{0, 1}, {1, 2}, {2, 3}, {3, 3}, {0, 2}, {1, 2},
		{2, 2}, {3, 1}, {0, 1}, {1, 3}, {2, 1}, {3, 2},
	},
	{ // Mode 2
		{2, 0}, {1, 2}, {0, 2}, {3, 1}, {2, 0}, {1, 3},
		{0, 2}, {1, 3}, {2, 2}, {3, 2}, {0, 1}, {1, 2},
	},
	{ // Mode 3
		{3, 2}, {2, 2}, {1, 2},
		{0, 2}, {1, 3}, {2, 0},
	},
}

func phaseValue(data uint8) complex128 {
	switch data % 4 {
	case 0:
		return complex(1, 0)
	case 1:
		return complex(0, 1)
	case 2:
		return complex(-1, 0)
	default:
		return complex(0, -1)
	}
}

// PhaseReference is the fixed reference OFDM symbol (symbol 1 of each
// transmission frame) that differential demodulation anchors against.
type PhaseReference struct {
	carriers int
	data     []complex128
}

// NewPhaseReference builds the reference symbol for a DAB mode
// (mode 4 is normalised to the mode-0 table, per clause 14.3.2).
func NewPhaseReference(mode int) (*PhaseReference, error) {
	tableMode := mode
	if mode == 4 {
		tableMode = 0
	}
	var carriers int
	switch mode {
	case 1:
		carriers = 1536
	case 2:
		carriers = 384
	case 3:
		carriers = 192
	case 4, 0:
		carriers = 768
	default:
		return nil, daberr.NewConfig("phase reference: invalid DAB mode %d", mode)
	}

	pr := &PhaseReference{carriers: carriers}
	entries := phaseTables[tableMode]
	data := make([]complex128, 0, carriers)
	for _, e := range entries {
		row := hTable[e.i]
		for k := 0; k < 32; k++ {
			data = append(data, phaseValue(row[k]+uint8(e.n)))
		}
	}
	pr.data = data
	return pr, nil
}

// Symbol returns the fixed reference symbol's carrier values.
func (pr *PhaseReference) Symbol() []complex128 { return pr.data }
