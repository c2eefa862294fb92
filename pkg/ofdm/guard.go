package ofdm

import "github.com/dbehnke/dabmod/pkg/daberr"

// InsertGuard prepends a cyclic prefix of guardLen samples (the tail
// of symbol) ahead of symbol, producing one full-length OFDM symbol
// including its guard interval. The flowgraph's OFDM stage calls it for
// each symbol it generates (the phase reference and the data symbols);
// no null symbol is built with it.
func InsertGuard(symbol []complex128, guardLen int) ([]complex128, error) {
	if guardLen <= 0 || guardLen > len(symbol) {
		return nil, daberr.NewInvariant("guard interval: length %d invalid for symbol of %d samples", guardLen, len(symbol))
	}
	out := make([]complex128, guardLen+len(symbol))
	copy(out, symbol[len(symbol)-guardLen:])
	copy(out[guardLen:], symbol)
	return out, nil
}
