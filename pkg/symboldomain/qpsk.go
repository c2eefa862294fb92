// Package symboldomain maps a punctured, interleaved bitstream onto
// complex QPSK data symbols and arranges them into an OFDM symbol's
// worth of carriers: frequency interleaving, phase reference
// insertion, and pi/4-DQPSK differential combination.
package symboldomain

import "github.com/dbehnke/dabmod/pkg/daberr"

const sqrt1_2 = 0.70710678118654752440

// qpskTable maps a 4-bit group (2 bits from each of two carrier
// halves) onto the two complex symbols ETS 300 401 clause 14.2
// assigns it.
var qpskTable = [16][2]complex128{
	{complex(sqrt1_2, sqrt1_2), complex(sqrt1_2, sqrt1_2)},
	{complex(sqrt1_2, sqrt1_2), complex(sqrt1_2, -sqrt1_2)},
	{complex(sqrt1_2, -sqrt1_2), complex(sqrt1_2, sqrt1_2)},
	{complex(sqrt1_2, -sqrt1_2), complex(sqrt1_2, -sqrt1_2)},
	{complex(sqrt1_2, sqrt1_2), complex(-sqrt1_2, sqrt1_2)},
	{complex(sqrt1_2, sqrt1_2), complex(-sqrt1_2, -sqrt1_2)},
	{complex(sqrt1_2, -sqrt1_2), complex(-sqrt1_2, sqrt1_2)},
	{complex(sqrt1_2, -sqrt1_2), complex(-sqrt1_2, -sqrt1_2)},
	{complex(-sqrt1_2, sqrt1_2), complex(sqrt1_2, sqrt1_2)},
	{complex(-sqrt1_2, sqrt1_2), complex(sqrt1_2, -sqrt1_2)},
	{complex(-sqrt1_2, -sqrt1_2), complex(sqrt1_2, sqrt1_2)},
	{complex(-sqrt1_2, -sqrt1_2), complex(sqrt1_2, -sqrt1_2)},
	{complex(-sqrt1_2, sqrt1_2), complex(-sqrt1_2, sqrt1_2)},
	{complex(-sqrt1_2, sqrt1_2), complex(-sqrt1_2, -sqrt1_2)},
	{complex(-sqrt1_2, -sqrt1_2), complex(-sqrt1_2, sqrt1_2)},
	{complex(-sqrt1_2, -sqrt1_2), complex(-sqrt1_2, -sqrt1_2)},
}

// QpskMap maps a punctured bitstream onto complex QPSK symbols, 4
// complex symbols produced per input byte. carriers must divide the
// input length into whole carriers/4-byte blocks.
func QpskMap(in []byte, carriers int) ([]complex128, error) {
	half := carriers / 8
	if half == 0 || len(in)%(carriers/4) != 0 {
		return nil, daberr.NewInvariant("qpsk map: input length %d not a multiple of carriers/4=%d", len(in), carriers/4)
	}
	out := make([]complex128, len(in)*4)
	inOffset := 0
	outOffset := 0
	for i := 0; i < len(in); i += carriers / 4 {
		for j := 0; j < half; j++ {
			a := in[inOffset]
			b := in[inOffset+half]

			tmp := (a&0xc0)>>4 | (b&0xc0)>>6
			out[outOffset], out[outOffset+1] = qpskTable[tmp][0], qpskTable[tmp][1]

			tmp = (a&0x30)>>2 | (b&0x30)>>4
			out[outOffset+2], out[outOffset+3] = qpskTable[tmp][0], qpskTable[tmp][1]

			tmp = (a & 0x0c) | (b&0x0c)>>2
			out[outOffset+4], out[outOffset+5] = qpskTable[tmp][0], qpskTable[tmp][1]

			tmp = (a&0x03)<<2 | (b & 0x03)
			out[outOffset+6], out[outOffset+7] = qpskTable[tmp][0], qpskTable[tmp][1]

			inOffset++
			outOffset += 8
		}
		inOffset += half
	}
	return out, nil
}
