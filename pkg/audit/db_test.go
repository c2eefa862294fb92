package audit

import (
	"os"
	"testing"
	"time"

	"github.com/dbehnke/dabmod/pkg/logger"
)

func TestOpen(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_dabmod_audit.db"
	defer func() { _ = os.Remove(dbPath) }()

	db, err := Open(dbPath, log)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	if db.db == nil {
		t.Error("expected non-nil database connection")
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_dabmod_audit_repo.db"
	defer func() { _ = os.Remove(dbPath) }()

	db, err := Open(dbPath, log)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewRepository(db.GetDB())

	event := &ControlEvent{
		Timestamp: time.Now(),
		Verb:      "set",
		Module:    "gain",
		Param:     "digital",
		Value:     "0.5",
		Result:    "ok",
	}
	if err := repo.RecordControlEvent(event); err != nil {
		t.Fatalf("RecordControlEvent failed: %v", err)
	}

	sample := &FrameSample{
		Timestamp:  time.Now(),
		FCT:        3,
		GainFactor: 0.5,
	}
	if err := repo.RecordFrameSample(sample); err != nil {
		t.Fatalf("RecordFrameSample failed: %v", err)
	}

	events, err := repo.RecentControlEvents(10)
	if err != nil {
		t.Fatalf("RecentControlEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].Value != "0.5" {
		t.Fatalf("unexpected control events: %+v", events)
	}

	samples, err := repo.RecentFrameSamples(10)
	if err != nil {
		t.Fatalf("RecentFrameSamples failed: %v", err)
	}
	if len(samples) != 1 || samples[0].FCT != 3 {
		t.Fatalf("unexpected frame samples: %+v", samples)
	}
}
