package subchannel

import "github.com/dbehnke/dabmod/pkg/daberr"

// Subchannel describes one audio/data subchannel of a DAB multiplex,
// decoded from its ETI STC field (start address, framesize in bytes,
// and the 6-bit TPL protection code).
type Subchannel struct {
	SCID           int
	StartAddressCU int
	Framesize      int // bytes, always a multiple of 8 per STC's STL field
	TPL            int
}

// ProtectionForm reports whether this subchannel uses the long form
// (EEP, bit 5 of TPL set) or the short form (UEP).
func (s Subchannel) ProtectionForm() bool {
	return (s.TPL>>5)&1 != 0
}

// ProtectionLevel is the 1-based protection level encoded in the low
// bits of TPL; its width depends on the protection form.
func (s Subchannel) ProtectionLevel() int {
	if s.ProtectionForm() {
		return (s.TPL & 0x3) + 1
	}
	return (s.TPL & 0x7) + 1
}

// ProtectionOption is the long-form option field (0 or 1); always 0
// for short form.
func (s Subchannel) ProtectionOption() int {
	if s.ProtectionForm() {
		return (s.TPL >> 2) & 0x7
	}
	return 0
}

// Bitrate returns the subchannel's bitrate in kb/s, derived from its
// byte framesize (Framesize bytes per 24 ms logical frame is
// Framesize*8/24 = Framesize/3 kb/s).
func (s Subchannel) Bitrate() int {
	return s.Framesize / 3
}

// Rules resolves the puncturing rule sequence for this subchannel's
// protection profile. Unrecognised (bitrate, level) UEP combinations
// and unrecognised EEP options/levels surface as *daberr.Config.
func (s Subchannel) Rules() ([]PuncturingRule, error) {
	if s.ProtectionForm() {
		return eepRules(s.ProtectionOption(), s.ProtectionLevel(), s.Bitrate())
	}
	return uepRules(s.Bitrate(), s.ProtectionLevel())
}

// FramesizeCU returns the subchannel's logical size in capacity
// units (CU), used to derive its start address spacing in the CIF.
func (s Subchannel) FramesizeCU() (int, error) {
	if s.ProtectionForm() {
		return s.eepFramesizeCU()
	}
	return s.uepFramesizeCU()
}

func (s Subchannel) eepFramesizeCU() (int, error) {
	bitrate := s.Bitrate()
	if s.ProtectionOption() != 0 {
		switch s.TPL & 0x03 {
		case 0:
			return (bitrate / 32) * 27, nil
		case 1:
			return (bitrate / 32) * 21, nil
		case 2:
			return (bitrate / 32) * 18, nil
		case 3:
			return (bitrate / 32) * 15, nil
		}
	}
	switch s.TPL & 0x03 {
	case 0:
		return (bitrate / 8) * 12, nil
	case 1:
		return (bitrate / 8) * 8, nil
	case 2:
		return (bitrate / 8) * 6, nil
	case 3:
		return (bitrate / 8) * 4, nil
	}
	return 0, daberr.NewConfig("unreachable EEP framesize selector")
}

var uepFramesizeCuTable = map[int]map[int]int{
	32:  {1: 35, 2: 29, 3: 24, 4: 21, 5: 16},
	48:  {1: 52, 2: 42, 3: 35, 4: 29, 5: 24},
	56:  {2: 52, 3: 42, 4: 35, 5: 29},
	64:  {1: 70, 2: 58, 3: 48, 4: 42, 5: 32},
	80:  {1: 84, 2: 70, 3: 58, 4: 52, 5: 40},
	96:  {1: 104, 2: 84, 3: 70, 4: 58, 5: 48},
	112: {2: 104, 3: 84, 4: 70, 5: 58},
	128: {1: 140, 2: 116, 3: 96, 4: 84, 5: 64},
	160: {1: 168, 2: 140, 3: 116, 4: 104, 5: 80},
	192: {1: 208, 2: 168, 3: 140, 4: 116, 5: 96},
	224: {1: 232, 2: 208, 3: 168, 4: 140, 5: 116},
	256: {1: 280, 2: 232, 3: 192, 4: 168, 5: 128},
	320: {2: 280, 4: 208, 5: 160},
	384: {1: 416, 3: 280, 5: 192},
}

func (s Subchannel) uepFramesizeCU() (int, error) {
	levels, ok := uepFramesizeCuTable[s.Bitrate()]
	if !ok {
		return 0, daberr.NewConfig("unsupported UEP bitrate %d kb/s for framesize", s.Bitrate())
	}
	cu, ok := levels[s.ProtectionLevel()]
	if !ok {
		return 0, daberr.NewConfig("unsupported UEP protection level %d at %d kb/s for framesize", s.ProtectionLevel(), s.Bitrate())
	}
	return cu, nil
}

// FICRules exposes the FIC's fixed puncturing rules for a given MID.
func FICRules(mid uint8) []PuncturingRule {
	return ficRules(mid)
}
