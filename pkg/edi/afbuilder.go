package edi

import (
	"github.com/dbehnke/dabmod/pkg/crc"
	"github.com/dbehnke/dabmod/pkg/rs"
)

// DecodeAttempt is the result of AFBuilder.DecodeAttempt.
type DecodeAttempt int

const (
	// DecodeNo means decoding cannot be attempted yet.
	DecodeNo DecodeAttempt = iota
	// DecodeMaybe means enough fragments are held to attempt RS recovery.
	DecodeMaybe
	// DecodeYes means every fragment of the packet is present.
	DecodeYes
)

// AFBuilder collects PFT fragments sharing one pseq and assembles them
// into an AF packet, optionally recovering missing fragments via
// Reed-Solomon erasure decoding.
type AFBuilder struct {
	PSeq     uint16
	fragment map[uint32]*Fragment // findex -> fragment
	fcount   uint32
	fec      bool
	addr     bool
	rsK      uint8
	rsZ      uint8
	source   uint16
	dest     uint16
	plen     uint16
	started  bool

	// Lifetime is a countdown measured in fragment arrivals; it is
	// decremented by the owning PFTManager, not by AFBuilder itself.
	Lifetime int
}

// NewAFBuilder creates an empty builder for pseq.
func NewAFBuilder(pseq uint16) *AFBuilder {
	return &AFBuilder{PSeq: pseq, fragment: make(map[uint32]*Fragment)}
}

// Push stores frag if it is consistent with the builder's pseq/fcount (and,
// once a first fragment has been seen, with its fec/addr/rsK/rsZ/plen as
// well). It is a no-op if a fragment at the same findex is already stored.
func (b *AFBuilder) Push(frag *Fragment) {
	if frag.PSeq != b.PSeq || frag.FCount != b.fcount && b.started {
		return
	}
	if !b.started {
		b.fcount = frag.FCount
		b.fec = frag.FEC
		b.addr = frag.Addr
		b.rsK = frag.RSK
		b.rsZ = frag.RSZ
		b.source = frag.Source
		b.dest = frag.Dest
		b.plen = frag.PLen
		b.started = true
	} else {
		isLast := frag.FIndex == b.fcount-1
		if frag.FEC != b.fec || frag.Addr != b.addr || frag.RSK != b.rsK ||
			frag.RSZ != b.rsZ || frag.Source != b.source || frag.Dest != b.dest {
			return
		}
		if !isLast && frag.PLen != b.plen {
			return
		}
	}
	if _, exists := b.fragment[frag.FIndex]; !exists {
		b.fragment[frag.FIndex] = frag
	}
}

// DecodeAttempt reports whether enough fragments are held to extract the
// AF packet, per spec.md section 4.2.
func (b *AFBuilder) DecodeAttempt() DecodeAttempt {
	if len(b.fragment) == 0 {
		return DecodeNo
	}
	if uint32(len(b.fragment)) >= b.fcount {
		return DecodeYes
	}
	if !b.fec {
		return DecodeNo
	}
	plen := int(b.plen)
	cMax := (int(b.fcount) * plen) / (int(b.rsK) + rs.ParityBytes)
	if cMax == 0 {
		return DecodeNo
	}
	rMin := int(b.fcount) - (cMax*rs.ParityBytes)/plen
	if rMin < 0 {
		rMin = 0
	}
	if len(b.fragment) >= rMin {
		return DecodeMaybe
	}
	return DecodeNo
}

// Extract assembles the AF packet, applying Reed-Solomon erasure recovery
// when the builder was started in FEC mode. It returns (nil, false) when
// assembly is impossible or the inner AF CRC fails to verify.
func (b *AFBuilder) Extract() ([]byte, bool) {
	if !b.started {
		return nil, false
	}
	if !b.fec {
		return b.extractNoFEC()
	}
	return b.extractFEC()
}

func (b *AFBuilder) extractNoFEC() ([]byte, bool) {
	buf := make([]byte, 0, int(b.fcount)*int(b.plen))
	for i := uint32(0); i < b.fcount; i++ {
		f, ok := b.fragment[i]
		if !ok {
			return nil, false
		}
		buf = append(buf, f.Payload...)
	}
	if len(buf) < 12 || !crc.Check(buf) {
		return nil, false
	}
	return buf, true
}

func (b *AFBuilder) extractFEC() ([]byte, bool) {
	plen := int(b.plen)
	fcount := int(b.fcount)
	rsK := int(b.rsK)
	chunkSize := rsK + rs.ParityBytes

	cMax := (fcount * plen) / chunkSize
	if cMax == 0 {
		return nil, false
	}

	// Column-major deinterleaved RS block: block[k*fcount+j] = payload
	// byte k of fragment j. Missing fragments contribute zeroed bytes and
	// are recorded as erasures per chunk.
	blockLen := plen * fcount
	block := make([]byte, blockLen)
	missing := make(map[uint32]bool)
	for j := 0; j < fcount; j++ {
		if _, ok := b.fragment[uint32(j)]; !ok {
			missing[uint32(j)] = true
		}
	}
	for k := 0; k < plen; k++ {
		for j := 0; j < fcount; j++ {
			if missing[uint32(j)] {
				continue
			}
			f := b.fragment[uint32(j)]
			if k < len(f.Payload) {
				block[k*fcount+j] = f.Payload[k]
			}
		}
	}

	dec, err := rs.NewDecoder(rsK)
	if err != nil {
		return nil, false
	}

	out := make([]byte, 0, cMax*rsK)
	for c := 0; c < cMax; c++ {
		chunk := block[c*chunkSize : (c+1)*chunkSize]
		shards := make([][]byte, rsK+rs.ParityBytes)
		var erasures []int
		for i := 0; i < rsK; i++ {
			shards[i] = []byte{chunk[i]}
		}
		for i := 0; i < rs.ParityBytes; i++ {
			shards[rsK+i] = []byte{chunk[rsK+i]}
		}
		// Missing fragment j contributes zeroed bytes wherever its
		// column lands within this chunk's byte range; locate those
		// shard positions to pass as erasures.
		erasures = erasureIndicesForChunk(c, chunkSize, fcount, missing)
		if len(erasures) > rs.ParityBytes {
			return nil, false
		}
		if ok := dec.Reconstruct(shards, erasures); !ok {
			return nil, false
		}
		for i := 0; i < rsK; i++ {
			out = append(out, shards[i][0])
		}
	}

	if b.rsZ > 0 && len(out) >= int(b.rsZ) {
		out = out[:len(out)-int(b.rsZ)]
	}
	if len(out) < 12 || !crc.Check(out) {
		return nil, false
	}
	return out, true
}

// erasureIndicesForChunk computes, for RS chunk c (chunkSize bytes drawn
// sequentially from the column-major block), which of its byte positions
// fall on a missing fragment column.
func erasureIndicesForChunk(c, chunkSize, fcount int, missing map[uint32]bool) []int {
	var erasures []int
	base := c * chunkSize
	for pos := 0; pos < chunkSize; pos++ {
		globalOffset := base + pos
		j := globalOffset % fcount
		if missing[uint32(j)] {
			erasures = append(erasures, pos)
		}
	}
	return erasures
}
