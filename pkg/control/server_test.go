package control

import (
	"testing"

	"github.com/dbehnke/dabmod/pkg/logger"
)

func testServer() *Server {
	knobs := NewKnobs(1.0, "fix")
	return NewServer("127.0.0.1:0", knobs, logger.New(logger.Config{Level: "error"}))
}

// TestPing implements scenario S1: ["ping"] -> ["ok"].
func TestPing(t *testing.T) {
	s := testServer()
	if got := s.handle("ping"); got != "ok" {
		t.Fatalf("ping reply = %q, want %q", got, "ok")
	}
}

// TestSetGetRoundTrip implements scenario S2: set gain digital 0.5 then
// get gain digital -> 0.5.
func TestSetGetRoundTrip(t *testing.T) {
	s := testServer()
	if got := s.handle("set gain digital 0.5"); got != "ok" {
		t.Fatalf("set reply = %q, want ok", got)
	}
	if got := s.handle("get gain digital"); got != "0.5" {
		t.Fatalf("get reply = %q, want 0.5", got)
	}
}

func TestSetGainModeRejectsUnknown(t *testing.T) {
	s := testServer()
	if got := s.handle("set gain mode bogus"); got == "ok" {
		t.Fatalf("expected failure for unknown gain mode, got %q", got)
	}
}

func TestGetUnknownParamFails(t *testing.T) {
	s := testServer()
	got := s.handle("get gain bogus")
	if len(got) < 4 || got[:4] != "fail" {
		t.Fatalf("expected fail reply, got %q", got)
	}
}

func TestMuteRoundTrip(t *testing.T) {
	s := testServer()
	if got := s.handle("set mute state 1"); got != "ok" {
		t.Fatalf("set mute reply = %q, want ok", got)
	}
	if got := s.handle("get mute state"); got != "1" {
		t.Fatalf("get mute reply = %q, want 1", got)
	}
}

func TestEmptyRequestFails(t *testing.T) {
	s := testServer()
	got := s.handle("")
	if len(got) < 4 || got[:4] != "fail" {
		t.Fatalf("expected fail reply for empty request, got %q", got)
	}
}
