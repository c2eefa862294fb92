package edi

import "sort"

// DefaultMaxDelay is the default number of AF packets an incomplete
// builder is allowed to linger for before being forced to a decision.
const DefaultMaxDelay = 10

// NumAFBuildersToKeep bounds how far behind next_pseq a builder may sit
// before being garbage-collected.
const NumAFBuildersToKeep = 10

// PFTManager reassembles a stream of PFT fragments into AF packets,
// delivered strictly in pseq order (mod 2^16).
type PFTManager struct {
	MaxDelay int

	builders     map[uint16]*AFBuilder
	nextPSeq     uint16
	haveNextPSeq bool
}

// NewPFTManager creates a manager with the default max delay.
func NewPFTManager() *PFTManager {
	return &PFTManager{
		MaxDelay: DefaultMaxDelay,
		builders: make(map[uint16]*AFBuilder),
	}
}

// Push feeds one fragment into the appropriate AFBuilder, creating it (and
// initializing next_pseq, on the very first fragment ever seen) if needed.
func (m *PFTManager) Push(frag *Fragment) {
	if !m.haveNextPSeq {
		m.nextPSeq = frag.PSeq
		m.haveNextPSeq = true
	}
	b, ok := m.builders[frag.PSeq]
	if !ok {
		b = NewAFBuilder(frag.PSeq)
		b.Lifetime = int(frag.FCount) * m.MaxDelay
		m.builders[frag.PSeq] = b
	}
	b.Push(frag)
}

// GetNextAF attempts to produce the AF packet at next_pseq, per
// spec.md section 4.3. It returns (payload, true) when a packet (possibly
// empty on unrecoverable loss) is ready to advance past, or (nil, false)
// when the caller should wait for more fragments.
func (m *PFTManager) GetNextAF() ([]byte, bool) {
	if !m.haveNextPSeq {
		return nil, false
	}
	b, ok := m.builders[m.nextPSeq]
	if !ok {
		if len(m.builders) > m.MaxDelay {
			m.builders = make(map[uint16]*AFBuilder)
			return nil, false
		}
		return nil, false
	}

	var result []byte
	var advance bool

	switch b.DecodeAttempt() {
	case DecodeYes:
		result, _ = b.Extract()
		advance = true
	case DecodeMaybe:
		b.Lifetime--
		if b.Lifetime <= 0 {
			result, _ = b.Extract()
			advance = true
		}
	case DecodeNo:
		b.Lifetime--
		if b.Lifetime <= 0 {
			advance = true // skip next_pseq with no output
		}
	}

	if advance {
		delete(m.builders, m.nextPSeq)
		m.nextPSeq++
		m.gc()
		return result, true
	}
	return nil, false
}

// gc discards builders NumAFBuildersToKeep positions or more behind
// next_pseq, accounting for 16-bit wraparound.
func (m *PFTManager) gc() {
	if len(m.builders) == 0 {
		return
	}
	var stale []uint16
	for pseq := range m.builders {
		behind := m.nextPSeq - pseq // unsigned wraparound arithmetic
		if behind >= NumAFBuildersToKeep && behind < 0x8000 {
			stale = append(stale, pseq)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i] < stale[j] })
	for _, pseq := range stale {
		delete(m.builders, pseq)
	}
}
