// Package subchannel resolves a DAB subchannel's transport protection
// level (TPL, as carried in the ETI STC field) into the concrete
// puncturing rule sequence and logical framesize (in capacity units)
// that ETS 300 401 prescribes for it, following the EEP/UEP tables in
// the reference subchannel source.
package subchannel

// PuncturingRule is one entry of a puncturing sequence: apply pattern
// to every 4 input bytes, length/4 times, cycling through the rule
// sequence until the logical frame is consumed.
type PuncturingRule struct {
	Length  int // input bytes this rule covers (always a multiple of 4, or the tail length)
	Pattern uint32
}

// BitSize is the number of 1 bits in Pattern's top 32 bits, i.e. the
// number of output bits this rule keeps per 32-bit pattern application.
func (r PuncturingRule) BitSize() int {
	bits := 0
	for mask := uint32(0x80000000); mask != 0; mask >>= 1 {
		if r.Pattern&mask != 0 {
			bits++
		}
	}
	return bits
}

// The 24 base puncturing patterns from ETS 300 401 Annex B.
const (
	p1  = 0xc8888888
	p2  = 0xc888c888
	p3  = 0xc8c8c888
	p4  = 0xc8c8c8c8
	p5  = 0xccc8c8c8
	p6  = 0xccc8ccc8
	p7  = 0xccccccc8
	p8  = 0xcccccccc
	p9  = 0xeccccccc
	p10 = 0xeccceccc
	p11 = 0xecececcc
	p12 = 0xecececec
	p13 = 0xeeececec
	p14 = 0xeeeceeec
	p15 = 0xeeeeeeec
	p16 = 0xeeeeeeee
	p17 = 0xfeeeeeee
	p18 = 0xfeeefeee
	p19 = 0xfefefeee
	p20 = 0xfefefefe
	p21 = 0xfffefefe
	p22 = 0xfffefffe
	p23 = 0xfffffffe
	p24 = 0xffffffff
)

func rule(length int, pattern uint32) PuncturingRule {
	return PuncturingRule{Length: length, Pattern: pattern}
}

// TailRule is the fixed puncturing rule applied to the convolutional
// encoder's 3-byte (24-bit) tail flush, common to every subchannel and
// the FIC: keep the first two of every four tail bits (12 of the 24).
func TailRule() PuncturingRule {
	return PuncturingRule{Length: 3, Pattern: 0xCCCCCC}
}
