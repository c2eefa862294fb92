package subchannel

import (
	"testing"

	"github.com/dbehnke/dabmod/pkg/daberr"
)

func TestProtectionFormDecoding(t *testing.T) {
	// Short form (bit5 clear), bitrate 48kb/s (framesize 144 bytes), level 3 (bits 0-2 = 2).
	s := Subchannel{Framesize: 144, TPL: 0x02}
	if s.ProtectionForm() {
		t.Fatalf("expected short form")
	}
	if s.Bitrate() != 48 {
		t.Fatalf("bitrate = %d, want 48", s.Bitrate())
	}
	if s.ProtectionLevel() != 3 {
		t.Fatalf("level = %d, want 3", s.ProtectionLevel())
	}
	rules, err := s.Rules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 4 {
		t.Fatalf("expected 4 rules for UEP 48kb/s level 3, got %d", len(rules))
	}
	cu, err := s.FramesizeCU()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cu != 35 {
		t.Fatalf("framesizeCU = %d, want 35", cu)
	}
}

func TestUnrecognisedUEPCombinationIsConfigError(t *testing.T) {
	// 56kb/s level 1 does not exist in the UEP table (levels 2-5 only).
	s := Subchannel{Framesize: 56 * 3, TPL: 0x00}
	_, err := s.Rules()
	if _, ok := err.(*daberr.Config); !ok {
		t.Fatalf("expected *daberr.Config, got %v", err)
	}
}

func TestEEPLongFormRules(t *testing.T) {
	// Long form (bit5 set), option 0, level 1, bitrate 64kb/s.
	s := Subchannel{Framesize: 64 * 3, TPL: 0x20}
	if !s.ProtectionForm() {
		t.Fatalf("expected long form")
	}
	rules, err := s.Rules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules for EEP option 0 level 1, got %d", len(rules))
	}
}

func TestFICRulesVaryByMID(t *testing.T) {
	normal := FICRules(1)
	wide := FICRules(3)
	if normal[0].Length != 21*16 {
		t.Fatalf("normal FIC rule[0].Length = %d, want %d", normal[0].Length, 21*16)
	}
	if wide[0].Length != 29*16 {
		t.Fatalf("wide FIC rule[0].Length = %d, want %d", wide[0].Length, 29*16)
	}
}
