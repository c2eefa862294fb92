package flowgraph

import (
	"github.com/dbehnke/dabmod/pkg/modeparams"
	"github.com/dbehnke/dabmod/pkg/ofdm"
	"github.com/dbehnke/dabmod/pkg/subchannel"
	"github.com/dbehnke/dabmod/pkg/symboldomain"
)

// BitChain is the per-logical-stream sequence shared by the FIC and
// every subchannel: scramble, convolutionally encode, puncture to the
// stream's protection profile, then time-interleave. Each subchannel
// in a multiplex runs its own BitChain, since puncturing depends on
// its individual protection profile.
type BitChain struct {
	g                                         *Graph
	scrambler, convEnc, punct, timeInterleave Stage
}

// NewBitChain builds the scramble/encode/puncture/interleave chain for
// one stream's puncturing rules and interleaved framesize.
func NewBitChain(rules []subchannel.PuncturingRule, includeTail bool, framesize int) (*BitChain, error) {
	g := NewGraph()
	scrambler := newScramblerStage()
	convEnc := &convEncodeStage{}

	var tail *subchannel.PuncturingRule
	if includeTail {
		t := subchannel.TailRule()
		tail = &t
	}
	punct := newPuncturingStage(rules, tail)

	interleave, err := newTimeInterleaverStage(framesize)
	if err != nil {
		return nil, err
	}

	g.AddStage(scrambler)
	g.AddStage(convEnc)
	g.AddStage(punct)
	g.AddStage(interleave)

	g.Connect(scrambler, 0, convEnc, 0)
	g.Connect(convEnc, 0, punct, 0)
	g.Connect(punct, 0, interleave, 0)

	return &BitChain{g: g, scrambler: scrambler, convEnc: convEnc, punct: punct, timeInterleave: interleave}, nil
}

// Process feeds one logical frame's raw bits through the full chain
// and returns the time-interleaved output.
func (bc *BitChain) Process(in []byte) ([]byte, error) {
	bc.g.Feed(bc.scrambler, 0, in)
	if _, err := bc.g.Run(); err != nil {
		return nil, err
	}
	return bc.g.Output(bc.timeInterleave, 0), nil
}

// SymbolPipeline carries one transmission frame's muxed CIF/FIC bytes
// from the block partitioner through to the final gain-controlled I/Q
// samples: QPSK mapping, frequency interleaving, differential
// modulation against the mode's phase reference, OFDM, guard interval
// insertion, resampling and gain control.
type SymbolPipeline struct {
	g                                                          *Graph
	partitioner, qpsk, freqInterleave, diffMod, ofdmStg, rsmpl, gain Stage
	phaseRef                                                  *symboldomain.PhaseReference
}

// NewSymbolPipeline builds the symbol-domain-and-down pipeline for a
// transmission mode, given the gain control mode/factor and an
// optional CIC pre-equaliser (nil disables it).
func NewSymbolPipeline(mode int, outputRate int, gainMode ofdm.GainMode, gainFactor float64, cicEq *ofdm.CicEqualizer) (*SymbolPipeline, error) {
	params, err := modeparams.Lookup(mode)
	if err != nil {
		return nil, err
	}

	bp, err := newBlockPartitionerStage(mode, 0)
	if err != nil {
		return nil, err
	}

	phaseRef, err := symboldomain.NewPhaseReference(mode)
	if err != nil {
		return nil, err
	}

	qpsk := &qpskMapStage{carriers: params.NbCarriers}

	freqInterleave, err := newFrequencyInterleaverStage(mode)
	if err != nil {
		return nil, err
	}

	diffMod := newDifferentialModulatorStage(params.NbCarriers)

	guardLen := params.DataSymbolSamples - params.CarrierSpacing
	ofdmStg, err := newOFDMStage(params.NbCarriers, params.CarrierSpacing, guardLen, cicEq)
	if err != nil {
		return nil, err
	}

	rsmpl, err := newResamplerStage(outputRate)
	if err != nil {
		return nil, err
	}

	gain, err := newGainControlStage(gainMode, gainFactor)
	if err != nil {
		return nil, err
	}

	g := NewGraph()
	g.AddStage(bp)
	g.AddStage(qpsk)
	g.AddStage(freqInterleave)
	g.AddStage(diffMod)
	g.AddStage(ofdmStg)
	g.AddStage(rsmpl)
	g.AddStage(gain)

	g.Connect(bp, 0, qpsk, 0)
	g.Connect(qpsk, 0, freqInterleave, 0)
	g.Connect(freqInterleave, 0, diffMod, 1) // input 0 (the phase reference) is fed fresh every frame
	g.Connect(diffMod, 0, ofdmStg, 0)
	g.Connect(ofdmStg, 0, rsmpl, 0)
	g.Connect(rsmpl, 0, gain, 0)

	return &SymbolPipeline{
		g: g, partitioner: bp, qpsk: qpsk, freqInterleave: freqInterleave,
		diffMod: diffMod, ofdmStg: ofdmStg, rsmpl: rsmpl, gain: gain,
		phaseRef: phaseRef,
	}, nil
}

// Process feeds one encoded FIC block and one encoded CIF into the
// block partitioner; once a full transmission frame is accumulated it
// runs the remaining stages and returns the final I/Q samples. It
// returns (nil, nil) while still accumulating CIFs within a frame.
func (sp *SymbolPipeline) Process(fic, cif []byte) ([]complex128, error) {
	sp.g.Feed(sp.partitioner, 0, fic)
	sp.g.Feed(sp.partitioner, 1, cif)
	sp.g.Feed(sp.diffMod, 0, encodeComplex(sp.phaseRef.Symbol()))

	outcomes, err := sp.g.Run()
	if err != nil {
		return nil, err
	}
	if outcomes[0] == 0 {
		return nil, nil
	}
	return decodeComplex(sp.g.Output(sp.gain, 0)), nil
}
