package edi

import "github.com/dbehnke/dabmod/pkg/daberr"

// ParsedFrame is the logical content of one ETI(NI) frame, decoded back
// out of its 6144-byte wire form: the frame characterisation fields, the
// FIC bytes, and each subchannel's raw MST bytes in STC order. This is
// the boundary type the physical-layer encoder consumes, whether the
// 6144 bytes arrived from the EDI receive path or directly as a raw
// ETI(NI) stream (spec.md section 1: both are valid inputs).
type ParsedFrame struct {
	FCT  uint8
	MID  uint8
	FP   uint8
	FIC  []byte
	STC  []Subchannel
}

// ParseETIFrame decodes a 6144-byte ETI(NI) frame. It does not re-derive
// CRCs (those are a wire-integrity property the EDI receive path already
// checked on assembly); it just unpacks the FC/STC/FIC/MST structure the
// encoder needs.
func ParseETIFrame(buf []byte) (*ParsedFrame, error) {
	if len(buf) != ETIFrameSize {
		return nil, daberr.NewProtocol("ETI frame: %d bytes, want %d", len(buf), ETIFrameSize)
	}
	if buf[0] != 0x00 {
		return nil, daberr.NewProtocol("ETI frame: ERR byte %#02x, want 0x00", buf[0])
	}

	off := 4 // skip ERR + FSYNC
	fct := buf[off]
	nst := int(buf[off+1])
	ficf := buf[off+2]&0x80 != 0
	fl := uint16(buf[off+2]&0x07)<<8 | uint16(buf[off+3])
	mid := (buf[off+4] >> 6) & 0x03
	fp := (buf[off+4] >> 3) & 0x07
	off += 4

	if !ficf {
		return nil, daberr.NewProtocol("ETI frame: FICF not set")
	}

	stc := make([]Subchannel, nst)
	stl := make([]int, nst)
	for i := 0; i < nst; i++ {
		scid := buf[off] >> 2
		sad := uint16(buf[off]&0x03)<<8 | uint16(buf[off+1])
		tpl := (buf[off+2] >> 2) & 0x3F
		l := int(buf[off+2]&0x03)<<8 | int(buf[off+3])
		stc[i] = Subchannel{SCID: scid, SAD: sad, TPL: tpl}
		stl[i] = l
		off += 4
	}

	off += 2 // MNSC
	off += 2 // EOH CRC

	ficLen := expectedFICLen(mid)
	if len(buf)-off < ficLen {
		return nil, daberr.NewProtocol("ETI frame: truncated before FIC")
	}
	fic := append([]byte(nil), buf[off:off+ficLen]...)
	off += ficLen

	mstWords := 0
	for i := range stc {
		mstLen := stl[i] * 8
		if len(buf)-off < mstLen {
			return nil, daberr.NewProtocol("ETI frame: truncated before MST of subchannel %d", stc[i].SCID)
		}
		stc[i].MST = append([]byte(nil), buf[off:off+mstLen]...)
		off += mstLen
		mstWords += mstLen / 4
	}

	wantFL := uint16(nst) + 1 + uint16(ficLen/4) + uint16(mstWords)
	if fl != wantFL {
		return nil, daberr.NewProtocol("ETI frame: FL field %d does not match computed %d", fl, wantFL)
	}

	return &ParsedFrame{FCT: fct, MID: mid, FP: fp, FIC: fic, STC: stc}, nil
}
