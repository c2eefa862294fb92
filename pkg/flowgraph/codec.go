package flowgraph

import (
	"encoding/binary"
	"math"
)

// encodeComplex serialises a slice of complex samples to bytes (two
// float64s per sample, big-endian) so symbol-domain and OFDM stages,
// which operate on complex128, can sit on the same byte-buffer edges
// as the bit-domain stages.
func encodeComplex(in []complex128) []byte {
	out := make([]byte, len(in)*16)
	for i, c := range in {
		binary.BigEndian.PutUint64(out[i*16:], math.Float64bits(real(c)))
		binary.BigEndian.PutUint64(out[i*16+8:], math.Float64bits(imag(c)))
	}
	return out
}

// decodeComplex is the inverse of encodeComplex.
func decodeComplex(in []byte) []complex128 {
	n := len(in) / 16
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		re := math.Float64frombits(binary.BigEndian.Uint64(in[i*16:]))
		im := math.Float64frombits(binary.BigEndian.Uint64(in[i*16+8:]))
		out[i] = complex(re, im)
	}
	return out
}
