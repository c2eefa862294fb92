// Package rs wraps the Reed-Solomon RS(255, k) erasure codec used to
// recover AF packets from PFT fragment loss. The algorithmic contract is
// GF(256) with primitive polynomial 0x11D, first consecutive root alpha^1,
// primitive element alpha^1, and 48 parity (Reed-Solomon) bytes; this is
// exactly the configuration klauspost/reedsolomon's standard constructor
// implements, so no custom Galois-field arithmetic is written here.
package rs

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// ParityBytes is the fixed number of Reed-Solomon parity bytes per block,
// per the EDI/PFT wire format (spec.md "Reed-Solomon").
const ParityBytes = 48

// BlockSize is the total RS codeword size.
const BlockSize = 255

// Decoder reconstructs one RS(255, k) codeword at a time.
// klauspost/reedsolomon precomputes its Vandermonde matrix when a
// Decoder is constructed; the AF assembler constructs a fresh Decoder
// for every FEC block it extracts, so the matrix is rebuilt each time.
type Decoder struct {
	k   int
	enc reedsolomon.Encoder
}

// NewDecoder builds a Decoder for RS(k+48, k). k must be in (0, 255-48].
func NewDecoder(k int) (*Decoder, error) {
	if k <= 0 || k > BlockSize-ParityBytes {
		return nil, fmt.Errorf("rs: invalid data-shard count %d", k)
	}
	enc, err := reedsolomon.New(k, ParityBytes)
	if err != nil {
		return nil, fmt.Errorf("rs: constructing codec: %w", err)
	}
	return &Decoder{k: k, enc: enc}, nil
}

// K returns the number of data shards this decoder was built for.
func (d *Decoder) K() int { return d.k }

// Reconstruct attempts to recover the k data shards of a (k+48)-shard
// codeword given a list of missing shard indices (erasures, up to 48 of
// them out of k+48). shards must have length k+48; entries at the
// erasure indices are ignored on input and filled in on success.
// It reports ok=false (never an error) when recovery is impossible, per
// the AF assembler's "on failure, abort and return empty" contract.
func (d *Decoder) Reconstruct(shards [][]byte, erasures []int) (ok bool) {
	if len(shards) != d.k+ParityBytes {
		return false
	}
	working := make([][]byte, len(shards))
	copy(working, shards)
	erased := make(map[int]bool, len(erasures))
	for _, idx := range erasures {
		erased[idx] = true
	}
	for i := range working {
		if erased[i] {
			working[i] = nil
		}
	}
	if err := d.enc.ReconstructData(working); err != nil {
		return false
	}
	for i := 0; i < d.k; i++ {
		shards[i] = working[i]
	}
	return true
}
