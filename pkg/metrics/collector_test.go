package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func testCollector() *Collector {
	return NewCollectorWith(prometheus.NewRegistry())
}

func TestNewCollector(t *testing.T) {
	c := testCollector()
	if c == nil {
		t.Fatal("expected non-nil collector")
	}
}

func TestCollectorRecordsAFPacketOutcomes(t *testing.T) {
	c := testCollector()
	c.AFPacket(ResultOK)
	c.AFPacket(ResultCrcError)
	c.AFPacket(ResultRSFailed)
}

func TestCollectorFrameAndGainMetrics(t *testing.T) {
	c := testCollector()
	c.ETIFrame()
	c.TxFrame()
	c.RSErasuresCorrected(3)
	c.SetGainFactor(0.75)
	c.ControlRequest("ping")
}
