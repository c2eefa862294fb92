package audit

import (
	"context"
	"time"

	"github.com/dbehnke/dabmod/pkg/logger"
)

// Writer decouples audit persistence from its callers: RecordControlEvent
// and RecordFrameSample enqueue onto a buffered channel and return
// immediately, so a slow disk never stalls the control server or the
// flowgraph. A full queue drops the sample (spec_full.md section 5).
type Writer struct {
	repo   *Repository
	log    *logger.Logger
	events chan ControlEvent
	frames chan FrameSample
}

// NewWriter builds a Writer with a reasonably deep queue for each table.
func NewWriter(repo *Repository, log *logger.Logger) *Writer {
	return &Writer{
		repo:   repo,
		log:    log.WithComponent("audit"),
		events: make(chan ControlEvent, 256),
		frames: make(chan FrameSample, 1024),
	}
}

// Run drains both queues until ctx is cancelled.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-w.events:
			if err := w.repo.RecordControlEvent(&e); err != nil {
				w.log.Warn("failed to persist control event", logger.Error(err))
			}
		case s := <-w.frames:
			if err := w.repo.RecordFrameSample(&s); err != nil {
				w.log.Warn("failed to persist frame sample", logger.Error(err))
			}
		}
	}
}

// RecordControlEvent enqueues a control-channel event, stamping the
// current time. The caller supplies Verb/Module/Param/Value/Result.
func (w *Writer) RecordControlEvent(e ControlEvent) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case w.events <- e:
	default:
		w.log.Warn("control event queue full, dropping sample")
	}
}

// RecordFrameSample enqueues a transmission-frame-rate sample, stamping
// the current time.
func (w *Writer) RecordFrameSample(s FrameSample) {
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	select {
	case w.frames <- s:
	default:
		w.log.Warn("frame sample queue full, dropping sample")
	}
}
