package bitdomain

import (
	"github.com/dbehnke/dabmod/pkg/daberr"
	"github.com/dbehnke/dabmod/pkg/subchannel"
)

// PuncturingEncoder applies a cyclic sequence of puncturing rules to
// a convolution-encoded bitstream, optionally followed by a fixed
// tail rule covering the encoder's 3-byte flush.
type PuncturingEncoder struct {
	rules    []subchannel.PuncturingRule
	tailRule *subchannel.PuncturingRule
	inSize   int
	outSize  int
}

// NewPuncturingEncoder builds an encoder from a rule sequence and an
// optional tail rule (pass nil for none, e.g. when the caller applies
// its own tail handling).
func NewPuncturingEncoder(rules []subchannel.PuncturingRule, tailRule *subchannel.PuncturingRule) *PuncturingEncoder {
	e := &PuncturingEncoder{rules: rules, tailRule: tailRule}
	e.recompute()
	return e
}

func (e *PuncturingEncoder) recompute() {
	in, out := 0, 0
	for _, r := range e.rules {
		for length := r.Length; length > 0; length -= 4 {
			out += r.BitSize()
			in += 4
		}
	}
	if e.tailRule != nil {
		in += e.tailRule.Length
		out += e.tailRule.BitSize()
	}
	e.inSize = in
	e.outSize = (out + 7) / 8
}

// InputSize is the expected input byte count for one Process call.
func (e *PuncturingEncoder) InputSize() int { return e.inSize }

// OutputSize is the produced output byte count for one Process call.
func (e *PuncturingEncoder) OutputSize() int { return e.outSize }

// Process punctures in according to the configured rule sequence,
// returning a packed output buffer of exactly OutputSize() bytes.
func (e *PuncturingEncoder) Process(in []byte) ([]byte, error) {
	if len(in) != e.inSize {
		return nil, daberr.NewInvariant("puncturing input size %d, want %d", len(in), e.inSize)
	}
	out := make([]byte, e.outSize)

	inCount := 0
	outCount := 0
	bitCount := 0

	emitBit := func(bit byte) {
		out[outCount] <<= 1
		out[outCount] |= bit
		bitCount++
		if bitCount == 8 {
			bitCount = 0
			outCount++
		}
	}

	bodySize := e.inSize
	if e.tailRule != nil {
		bodySize -= e.tailRule.Length
	}

	ruleIdx := 0
	for inCount < bodySize {
		r := e.rules[ruleIdx]
		for length := r.Length; length > 0; length -= 4 {
			mask := uint32(0x80000000)
			for i := 0; i < 4; i++ {
				data := in[inCount]
				inCount++
				for j := 0; j < 8; j++ {
					if r.Pattern&mask != 0 {
						emitBit(data >> 7)
					}
					data <<= 1
					mask >>= 1
				}
			}
		}
		ruleIdx++
		if ruleIdx == len(e.rules) {
			ruleIdx = 0
		}
	}

	if e.tailRule != nil {
		mask := uint32(0x800000)
		for i := 0; i < e.tailRule.Length; i++ {
			data := in[inCount]
			inCount++
			for j := 0; j < 8; j++ {
				if e.tailRule.Pattern&mask != 0 {
					emitBit(data >> 7)
				}
				data <<= 1
				mask >>= 1
			}
		}
	}

	if bitCount != 0 {
		out[outCount] <<= uint(8 - bitCount)
	}

	return out, nil
}
