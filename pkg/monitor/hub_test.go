package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/dbehnke/dabmod/pkg/logger"
)

func TestHubPublishDoesNotBlockWithNoClients(t *testing.T) {
	h := NewHub(logger.New(logger.Config{Level: "error"}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	for i := 0; i < 10; i++ {
		h.Publish(FrameStats{FCT: uint8(i), Timestamp: time.Now(), GainFactor: 1.0})
	}

	if n := h.ClientCount(); n != 0 {
		t.Fatalf("client count = %d, want 0", n)
	}
}

func TestHubPublishDropsWhenBufferFull(t *testing.T) {
	h := NewHub(logger.New(logger.Config{Level: "error"}))
	// Do not run the hub loop, so the channel never drains.
	for i := 0; i < 300; i++ {
		h.Publish(FrameStats{FCT: uint8(i)})
	}
	// Should not deadlock or panic; buffer caps at 256 and extras are dropped.
}
