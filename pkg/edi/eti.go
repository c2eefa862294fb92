package edi

import (
	"github.com/dbehnke/dabmod/pkg/crc"
	"github.com/dbehnke/dabmod/pkg/daberr"
)

// ETIFrameSize is the fixed size of an ETI(NI) output frame.
const ETIFrameSize = 6144

// padByte fills an ETI frame out to ETIFrameSize.
const padByte = 0x55

// Subchannel is one STC entry accumulated from an est<n> tag: the stream
// characterisation fields plus its Main Stream Component bytes.
type Subchannel struct {
	SCID uint8
	SAD  uint16
	TPL  uint8
	MST  []byte
}

// ETIWriter accumulates TAG-driven updates for one ETI frame and, once all
// required fields are present, assembles the 6144-byte ETI(NI) output.
//
// Its state machine is Uninitialised -> WaitingProtocol -> WaitingFC ->
// WaitingFIC -> Collecting -> Assembled, with Reinit resetting to
// Uninitialised after every emitted frame (spec.md section 4.10).
type ETIWriter struct {
	ProtocolValid bool
	FCValid       bool

	FCT   uint8
	FCTH  uint8
	FP    uint8
	MID   uint8
	FICF  bool
	ATSTF bool
	TSTA  uint32
	Stat  uint8

	HaveMNSC bool
	MNSC     uint16

	UTCO    uint8
	Seconds uint32

	FIC []byte

	Subchannels []Subchannel
}

// NewETIWriter creates a writer ready to accept TAGs for the first frame.
// MNSC defaults to 0xFFFF per the "always write whatever TAG provided,
// else 0xFFFF" Open Question resolution.
func NewETIWriter() *ETIWriter {
	w := &ETIWriter{}
	w.Reinit()
	return w
}

// Reinit clears all per-frame state, ready to collect the next frame.
func (w *ETIWriter) Reinit() {
	w.ProtocolValid = false
	w.FCValid = false
	w.FCT = 0
	w.FCTH = 0
	w.FP = 0
	w.MID = 0
	w.FICF = false
	w.ATSTF = false
	w.TSTA = 0
	w.Stat = 0
	w.HaveMNSC = false
	w.MNSC = 0xFFFF
	w.UTCO = 0
	w.Seconds = 0
	w.FIC = nil
	w.Subchannels = nil
}

func expectedFICLen(mid uint8) int {
	if mid == 3 {
		return 32 * 4
	}
	return 24 * 4
}

// Assemble validates the collected state and builds the 6144-byte ETI(NI)
// frame, per spec.md section 4.6. On success it calls Reinit so the
// writer is ready for the next frame.
func (w *ETIWriter) Assemble() ([]byte, error) {
	if !w.ProtocolValid || !w.FCValid {
		return nil, daberr.NewAssemble("missing protocol or frame-characterisation TAG")
	}
	if w.MID > 3 {
		return nil, daberr.NewAssemble("invalid MID %d", w.MID)
	}
	if w.FP > 7 {
		return nil, daberr.NewAssemble("invalid FP %d", w.FP)
	}
	if !w.FICF {
		return nil, daberr.NewAssemble("FICF not set")
	}
	wantFIC := expectedFICLen(w.MID)
	if len(w.FIC) != wantFIC {
		return nil, daberr.NewAssemble("FIC length %d, want %d for MID %d", len(w.FIC), wantFIC, w.MID)
	}
	if len(w.Subchannels) > 64 {
		return nil, daberr.NewAssemble("%d subchannels exceeds maximum of 64", len(w.Subchannels))
	}

	nst := len(w.Subchannels)
	mstWords := 0
	for _, sc := range w.Subchannels {
		if len(sc.MST)%4 != 0 {
			return nil, daberr.NewAssemble("subchannel %d: MST length %d not a multiple of 4", sc.SCID, len(sc.MST))
		}
		mstWords += len(sc.MST) / 4
	}
	fl := uint16(nst) + 1 + uint16(len(w.FIC)/4) + uint16(mstWords)

	buf := make([]byte, 0, ETIFrameSize)

	// ERR
	buf = append(buf, 0x00)

	// FSYNC: odd fct -> 0xF8C549, even fct -> 0x073AB6.
	if w.FCT%2 == 1 {
		buf = append(buf, 0xF8, 0xC5, 0x49)
	} else {
		buf = append(buf, 0x07, 0x3A, 0xB6)
	}

	eohStart := len(buf)

	// FC: FCT, NST, FICF|FL-high, FL-low, MID|FP|rfa|rfu packed per byte.
	buf = append(buf, w.FCT)
	buf = append(buf, byte(nst))
	ficfBit := byte(0)
	if w.FICF {
		ficfBit = 0x80
	}
	buf = append(buf, ficfBit|byte((fl>>8)&0x07))
	buf = append(buf, byte(fl&0xFF))
	buf = append(buf, (w.MID<<6)|(w.FP<<3))

	// STC entries.
	for _, sc := range w.Subchannels {
		stl := uint16(len(sc.MST) / 8)
		buf = append(buf,
			(sc.SCID<<2)|byte(sc.SAD>>8),
			byte(sc.SAD&0xFF),
			(sc.TPL<<2)|byte(stl>>8),
			byte(stl&0xFF),
		)
	}

	// MNSC.
	buf = append(buf, byte(w.MNSC>>8), byte(w.MNSC&0xFF))

	// EOH CRC over bytes [4 .. end-of-EOH), i.e. from FC start through MNSC.
	eohCRC := crc.CCITT16(buf[eohStart:])
	buf = append(buf, byte(eohCRC>>8), byte(eohCRC&0xFF))

	eofStart := len(buf)
	buf = append(buf, w.FIC...)
	for _, sc := range w.Subchannels {
		buf = append(buf, sc.MST...)
	}

	eofCRC := crc.CCITT16(buf[eofStart:])
	buf = append(buf, byte(eofCRC>>8), byte(eofCRC&0xFF))

	// RFU.
	buf = append(buf, 0xFF, 0xFF)

	// TIST: upper 24 bits from tsta, low byte RFU-in-TIST = 0xFF.
	buf = append(buf, byte(w.TSTA>>16), byte(w.TSTA>>8), byte(w.TSTA), 0xFF)

	if len(buf) > ETIFrameSize {
		return nil, daberr.NewInvariant("assembled ETI frame is %d bytes, exceeds %d", len(buf), ETIFrameSize)
	}
	for len(buf) < ETIFrameSize {
		buf = append(buf, padByte)
	}

	w.Reinit()
	return buf, nil
}
