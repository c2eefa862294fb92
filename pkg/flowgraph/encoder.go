package flowgraph

import (
	"github.com/dbehnke/dabmod/pkg/bitdomain"
	"github.com/dbehnke/dabmod/pkg/daberr"
	"github.com/dbehnke/dabmod/pkg/edi"
	"github.com/dbehnke/dabmod/pkg/modeparams"
	"github.com/dbehnke/dabmod/pkg/ofdm"
	"github.com/dbehnke/dabmod/pkg/subchannel"
)

// subchannelStream is one configured subchannel's placement in the muxed
// CIF plus the bit-domain chain that encodes its raw MST bytes.
type subchannelStream struct {
	scid           uint8
	startAddressCU int
	chain          *BitChain
}

// Encoder is the top-level physical-layer pipeline: it takes one parsed
// ETI(NI) logical frame per call and, once enough CIFs have accumulated
// for the configured transmission mode, returns one transmission frame
// of gain-controlled I/Q samples. It owns one BitChain per subchannel
// (keyed by the static multiplex definition) plus one BitChain per FIC
// variant (keyed by MID, since the FIC puncturing rules depend on it),
// built lazily the first time each MID is seen.
type Encoder struct {
	mode    int
	params  modeparams.Params
	streams []subchannelStream
	ficChains map[uint8]*BitChain
	symbols *SymbolPipeline
}

// NewEncoder builds the physical-layer encoder for a transmission mode
// and a static subchannel table (the multiplex definition from
// EnsembleConfig). gainMode/gainFactor/cicEq configure the final
// symbol-domain stages; cicEq may be nil to disable CIC pre-equalisation.
func NewEncoder(mode, outputRate int, subchannels []subchannel.Subchannel, gainMode ofdm.GainMode, gainFactor float64, cicEq *ofdm.CicEqualizer) (*Encoder, error) {
	params, err := modeparams.Lookup(mode)
	if err != nil {
		return nil, err
	}

	streams := make([]subchannelStream, 0, len(subchannels))
	for _, sc := range subchannels {
		rules, err := sc.Rules()
		if err != nil {
			return nil, err
		}
		tail := subchannel.TailRule()
		punctured := bitdomain.NewPuncturingEncoder(rules, &tail).OutputSize()
		chain, err := NewBitChain(rules, true, punctured)
		if err != nil {
			return nil, err
		}
		streams = append(streams, subchannelStream{
			scid:           uint8(sc.SCID),
			startAddressCU: sc.StartAddressCU,
			chain:          chain,
		})
	}

	symbols, err := NewSymbolPipeline(mode, outputRate, gainMode, gainFactor, cicEq)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		mode:      mode,
		params:    params,
		streams:   streams,
		ficChains: make(map[uint8]*BitChain),
		symbols:   symbols,
	}, nil
}

func (e *Encoder) ficChain(mid uint8) (*BitChain, error) {
	if c, ok := e.ficChains[mid]; ok {
		return c, nil
	}
	rules := subchannel.FICRules(mid)
	c, err := NewBitChain(rules, true, e.params.FicSizeOut)
	if err != nil {
		return nil, err
	}
	e.ficChains[mid] = c
	return c, nil
}

// Process encodes one ETI logical frame. It returns (nil, nil) while
// still accumulating the CIFs that make up one transmission frame, and
// (samples, nil) once a full transmission frame is ready. A subchannel
// named in the static table but absent from this frame's STC list
// leaves its CIF region zero-filled (a gap, not an error): the frame
// is still emitted, matching section 7's "gapless under healthy input,
// entire frames skipped under loss, never corrupted" rule at the ETI
// layer above this one.
func (e *Encoder) Process(pf *edi.ParsedFrame) ([]complex128, error) {
	fic, err := e.ficChain(pf.MID)
	if err != nil {
		return nil, err
	}
	ficEncoded, err := fic.Process(pf.FIC)
	if err != nil {
		return nil, err
	}

	cif := make([]byte, bitdomain.CifSize)
	for _, st := range e.streams {
		mst := findMST(pf.STC, st.scid)
		if mst == nil {
			continue
		}
		encoded, err := st.chain.Process(mst)
		if err != nil {
			return nil, err
		}
		offset := st.startAddressCU * 8
		if offset < 0 || offset+len(encoded) > len(cif) {
			return nil, daberr.NewInvariant("subchannel %d: encoded region [%d,%d) outside %d-byte CIF", st.scid, offset, offset+len(encoded), len(cif))
		}
		copy(cif[offset:], encoded)
	}

	return e.symbols.Process(ficEncoded, cif)
}

func findMST(stc []edi.Subchannel, scid uint8) []byte {
	for _, sc := range stc {
		if sc.SCID == scid {
			return sc.MST
		}
	}
	return nil
}
