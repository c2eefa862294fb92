// Package edi implements the EDI receive path: PFT fragment parsing, AF
// packet reassembly (with Reed-Solomon erasure recovery), AF decoding, TAG
// dispatch, and ETI(NI) frame collection/writing.
package edi

import (
	"github.com/dbehnke/dabmod/pkg/crc"
	"github.com/dbehnke/dabmod/pkg/daberr"
)

// minHeaderLen is the smallest possible PFT fragment header: the 12-byte
// fixed prefix plus a 2-byte header CRC, with neither the fec nor addr
// extension present.
const minHeaderLen = 14

// Fragment is one parsed PFT fragment. It is immutable after Parse.
type Fragment struct {
	PSeq    uint16
	FIndex  uint32 // 24-bit
	FCount  uint32 // 24-bit
	FEC     bool
	Addr    bool
	PLen    uint16 // 14-bit
	RSK     uint8
	RSZ     uint8
	Source  uint16
	Dest    uint16
	Payload []byte
	Invalid bool // header CRC failed to verify (fec case only)
}

// ParseFragment parses one PFT fragment from the front of buf.
//
// It returns (0, nil, nil) when buf does not yet hold a complete fragment
// (caller should wait for more bytes), (n, frag, nil) on success where n is
// the number of bytes consumed, or (0, nil, err) for a hard protocol
// violation (bad sync word).
func ParseFragment(buf []byte) (consumed int, frag *Fragment, err error) {
	if len(buf) < minHeaderLen {
		return 0, nil, nil
	}
	if buf[0] != 'P' || buf[1] != 'F' {
		return 0, nil, daberr.NewProtocol("PFT fragment: bad sync %q%q", buf[0], buf[1])
	}

	pseq := uint16(buf[2])<<8 | uint16(buf[3])
	findex := uint32(buf[4])<<16 | uint32(buf[5])<<8 | uint32(buf[6])
	fcount := uint32(buf[7])<<16 | uint32(buf[8])<<8 | uint32(buf[9])
	flags := buf[10]
	fec := flags&0x80 != 0
	addr := flags&0x40 != 0
	plenHi := uint16(flags & 0x3F)
	plenLo := uint16(buf[11])
	plen := plenHi<<8 | plenLo

	headerLen := 12
	if fec {
		headerLen += 2
	}
	if addr {
		headerLen += 4
	}
	headerLen += 2 // header CRC

	if len(buf) < headerLen {
		return 0, nil, nil
	}

	off := 12
	var rsK, rsZ uint8
	if fec {
		rsK = buf[off]
		rsZ = buf[off+1]
		off += 2
	}
	var source, dest uint16
	if addr {
		source = uint16(buf[off])<<8 | uint16(buf[off+1])
		dest = uint16(buf[off+2])<<8 | uint16(buf[off+3])
		off += 4
	}

	invalid := false
	if fec {
		if !crc.Check(buf[:headerLen]) {
			invalid = true
		}
	}

	if len(buf) < headerLen+int(plen) {
		return 0, nil, nil
	}

	payload := make([]byte, plen)
	copy(payload, buf[headerLen:headerLen+int(plen)])

	f := &Fragment{
		PSeq:    pseq,
		FIndex:  findex,
		FCount:  fcount,
		FEC:     fec,
		Addr:    addr,
		PLen:    plen,
		RSK:     rsK,
		RSZ:     rsZ,
		Source:  source,
		Dest:    dest,
		Payload: payload,
		Invalid: invalid,
	}
	return headerLen + int(plen), f, nil
}
