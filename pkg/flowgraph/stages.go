package flowgraph

import (
	"github.com/dbehnke/dabmod/pkg/bitdomain"
	"github.com/dbehnke/dabmod/pkg/daberr"
	"github.com/dbehnke/dabmod/pkg/ofdm"
	"github.com/dbehnke/dabmod/pkg/subchannel"
	"github.com/dbehnke/dabmod/pkg/symboldomain"
)

// scramblerStage wraps bitdomain.Scrambler.
type scramblerStage struct{ s *bitdomain.Scrambler }

func newScramblerStage() *scramblerStage { return &scramblerStage{s: bitdomain.NewScrambler()} }

func (*scramblerStage) Name() string { return "scrambler" }

func (st *scramblerStage) Process(inputs [][]byte, outputs [][]byte) (int, error) {
	buf := make([]byte, len(inputs[0]))
	copy(buf, inputs[0])
	outputs[0] = st.s.Scramble(buf)
	return 1, nil
}

// convEncodeStage wraps bitdomain.ConvEncode.
type convEncodeStage struct{}

func (*convEncodeStage) Name() string { return "conv_encoder" }

func (*convEncodeStage) Process(inputs [][]byte, outputs [][]byte) (int, error) {
	outputs[0] = bitdomain.ConvEncode(inputs[0])
	return 1, nil
}

// puncturingStage wraps bitdomain.PuncturingEncoder for one subchannel's
// (or the FIC's) protection profile.
type puncturingStage struct{ enc *bitdomain.PuncturingEncoder }

func newPuncturingStage(rules []subchannel.PuncturingRule, tail *subchannel.PuncturingRule) *puncturingStage {
	return &puncturingStage{enc: bitdomain.NewPuncturingEncoder(rules, tail)}
}

func (*puncturingStage) Name() string { return "puncturing" }

func (st *puncturingStage) Process(inputs [][]byte, outputs [][]byte) (int, error) {
	out, err := st.enc.Process(inputs[0])
	if err != nil {
		return 0, err
	}
	outputs[0] = out
	return 1, nil
}

// timeInterleaverStage wraps bitdomain.TimeInterleaver.
type timeInterleaverStage struct{ ti *bitdomain.TimeInterleaver }

func newTimeInterleaverStage(framesize int) (*timeInterleaverStage, error) {
	ti, err := bitdomain.NewTimeInterleaver(framesize)
	if err != nil {
		return nil, err
	}
	return &timeInterleaverStage{ti: ti}, nil
}

func (*timeInterleaverStage) Name() string { return "time_interleaver" }

func (st *timeInterleaverStage) Process(inputs [][]byte, outputs [][]byte) (int, error) {
	out, err := st.ti.Process(inputs[0])
	if err != nil {
		return 0, err
	}
	outputs[0] = out
	return 1, nil
}

// blockPartitionerStage wraps bitdomain.BlockPartitioner. Input 0 is
// the FIC block, input 1 is one CIF; it accumulates across calls and
// reports 1 only once a full transmission frame is assembled.
type blockPartitionerStage struct{ bp *bitdomain.BlockPartitioner }

func newBlockPartitionerStage(mode, phase int) (*blockPartitionerStage, error) {
	bp, err := bitdomain.NewBlockPartitioner(mode, phase)
	if err != nil {
		return nil, err
	}
	return &blockPartitionerStage{bp: bp}, nil
}

func (*blockPartitionerStage) Name() string { return "block_partitioner" }

func (st *blockPartitionerStage) Process(inputs [][]byte, outputs [][]byte) (int, error) {
	out := make([]byte, st.bp.OutputFramesize())
	done, err := st.bp.Process(inputs[0], inputs[1], out)
	if err != nil {
		return 0, err
	}
	if !done {
		return 0, nil
	}
	outputs[0] = out
	return 1, nil
}

// qpskMapStage wraps symboldomain.QpskMap.
type qpskMapStage struct{ carriers int }

func (*qpskMapStage) Name() string { return "qpsk_mapper" }

func (st *qpskMapStage) Process(inputs [][]byte, outputs [][]byte) (int, error) {
	symbols, err := symboldomain.QpskMap(inputs[0], st.carriers)
	if err != nil {
		return 0, err
	}
	outputs[0] = encodeComplex(symbols)
	return 1, nil
}

// frequencyInterleaverStage wraps symboldomain.FrequencyInterleaver,
// applied independently to every OFDM-symbol-sized chunk of its input.
type frequencyInterleaverStage struct{ fi *symboldomain.FrequencyInterleaver }

func newFrequencyInterleaverStage(mode int) (*frequencyInterleaverStage, error) {
	fi, err := symboldomain.NewFrequencyInterleaver(mode)
	if err != nil {
		return nil, err
	}
	return &frequencyInterleaverStage{fi: fi}, nil
}

func (*frequencyInterleaverStage) Name() string { return "frequency_interleaver" }

func (st *frequencyInterleaverStage) Process(inputs [][]byte, outputs [][]byte) (int, error) {
	in := decodeComplex(inputs[0])
	carriers := st.fi.Carriers()
	if len(in)%carriers != 0 {
		return 0, daberr.NewInvariant("frequency interleaver stage: input length %d not a multiple of %d carriers", len(in), carriers)
	}
	out := make([]complex128, 0, len(in))
	for base := 0; base < len(in); base += carriers {
		interleaved, err := st.fi.Process(in[base : base+carriers])
		if err != nil {
			return 0, err
		}
		out = append(out, interleaved...)
	}
	outputs[0] = encodeComplex(out)
	return 1, nil
}

// differentialModulatorStage wraps symboldomain.DifferentialModulator.
// Input 0 is the phase reference symbol, input 1 is the concatenation
// of data symbols for one transmission frame.
type differentialModulatorStage struct{ dm *symboldomain.DifferentialModulator }

func newDifferentialModulatorStage(carriers int) *differentialModulatorStage {
	return &differentialModulatorStage{dm: symboldomain.NewDifferentialModulator(carriers)}
}

func (*differentialModulatorStage) Name() string { return "differential_modulator" }

func (st *differentialModulatorStage) Process(inputs [][]byte, outputs [][]byte) (int, error) {
	phase := decodeComplex(inputs[0])
	data := decodeComplex(inputs[1])
	out, err := st.dm.Process(phase, data)
	if err != nil {
		return 0, err
	}
	outputs[0] = encodeComplex(out)
	return 1, nil
}

// ofdmStage wraps a CIC pre-equaliser, the IFFT generator and guard
// interval insertion, applied per OFDM symbol to a concatenation of
// carrier-domain symbols, producing time-domain samples including
// their guard intervals.
type ofdmStage struct {
	carriers int
	eq       *ofdm.CicEqualizer // nil when no pre-equalisation is configured
	gen      *ofdm.Generator
	guardLen int
}

func newOFDMStage(carriers, spacing, guardLen int, eq *ofdm.CicEqualizer) (*ofdmStage, error) {
	gen, err := ofdm.NewGenerator(carriers, spacing)
	if err != nil {
		return nil, err
	}
	return &ofdmStage{carriers: carriers, eq: eq, gen: gen, guardLen: guardLen}, nil
}

func (*ofdmStage) Name() string { return "ofdm" }

func (st *ofdmStage) Process(inputs [][]byte, outputs [][]byte) (int, error) {
	in := decodeComplex(inputs[0])
	if len(in)%st.carriers != 0 {
		return 0, daberr.NewInvariant("ofdm stage: input length %d not a multiple of %d carriers", len(in), st.carriers)
	}
	var out []complex128
	for base := 0; base < len(in); base += st.carriers {
		symbol := make([]complex128, st.carriers)
		copy(symbol, in[base:base+st.carriers])
		if st.eq != nil {
			st.eq.Apply(symbol)
		}
		timeDomain, err := st.gen.Process(symbol)
		if err != nil {
			return 0, err
		}
		withGuard, err := ofdm.InsertGuard(timeDomain, st.guardLen)
		if err != nil {
			return 0, err
		}
		out = append(out, withGuard...)
	}
	outputs[0] = encodeComplex(out)
	return 1, nil
}

// resamplerStage wraps ofdm.Resampler.
type resamplerStage struct{ r *ofdm.Resampler }

func newResamplerStage(outputRate int) (*resamplerStage, error) {
	r, err := ofdm.NewResampler(outputRate)
	if err != nil {
		return nil, err
	}
	return &resamplerStage{r: r}, nil
}

func (*resamplerStage) Name() string { return "resampler" }

func (st *resamplerStage) Process(inputs [][]byte, outputs [][]byte) (int, error) {
	in := decodeComplex(inputs[0])
	outputs[0] = encodeComplex(st.r.Process(in))
	return 1, nil
}

// gainControlStage wraps ofdm.GainControl.
type gainControlStage struct{ g *ofdm.GainControl }

func newGainControlStage(mode ofdm.GainMode, factor float64) (*gainControlStage, error) {
	g, err := ofdm.NewGainControl(mode, factor)
	if err != nil {
		return nil, err
	}
	return &gainControlStage{g: g}, nil
}

func (*gainControlStage) Name() string { return "gain_control" }

func (st *gainControlStage) Process(inputs [][]byte, outputs [][]byte) (int, error) {
	samples := decodeComplex(inputs[0])
	st.g.Apply(samples)
	outputs[0] = encodeComplex(samples)
	return 1, nil
}
