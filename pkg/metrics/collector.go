// Package metrics exposes the modulator's Prometheus counters and
// gauges: AF packets received/dropped, RS corrections performed, ETI
// and transmission frames emitted, gain factor, and remote-control
// requests. PAPR statistics reporting is not part of this surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds every metric registered against the default
// Prometheus registry. One Collector is created per process.
type Collector struct {
	afPackets       *prometheus.CounterVec
	etiFrames       prometheus.Counter
	txFrames        prometheus.Counter
	rsErasuresFixed prometheus.Counter
	gainFactor      prometheus.Gauge
	controlRequests *prometheus.CounterVec
}

// AF packet outcomes recorded against the afPackets counter vector.
const (
	ResultOK       = "ok"
	ResultCrcError = "crc_error"
	ResultRSFailed = "rs_failed"
)

// NewCollector registers the modulator's metrics against the default
// Prometheus registry (the one promhttp.Handler serves) and returns
// the collector. One Collector is created per process.
func NewCollector() *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer)
}

// NewCollectorWith registers the modulator's metrics against reg instead
// of the default registry. Tests use this with a fresh
// prometheus.NewRegistry() so repeated collector construction within one
// test binary does not panic on duplicate registration.
func NewCollectorWith(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		afPackets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dabmod_af_packets_total",
			Help: "AF packets processed by the EDI receive path, by outcome.",
		}, []string{"result"}),
		etiFrames: factory.NewCounter(prometheus.CounterOpts{
			Name: "dabmod_eti_frames_total",
			Help: "ETI(NI) logical frames assembled from the EDI receive path.",
		}),
		txFrames: factory.NewCounter(prometheus.CounterOpts{
			Name: "dabmod_tx_frames_total",
			Help: "Transmission frames emitted by the OFDM encoder.",
		}),
		rsErasuresFixed: factory.NewCounter(prometheus.CounterOpts{
			Name: "dabmod_rs_erasures_corrected_total",
			Help: "Reed-Solomon erasures corrected across all AF packets.",
		}),
		gainFactor: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dabmod_gain_factor",
			Help: "Current output gain control scale factor.",
		}),
		controlRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dabmod_control_requests_total",
			Help: "Remote-control requests received, by verb.",
		}, []string{"verb"}),
	}
}

// AFPacket records one AF packet's outcome.
func (c *Collector) AFPacket(result string) {
	c.afPackets.WithLabelValues(result).Inc()
}

// ETIFrame records one assembled ETI logical frame.
func (c *Collector) ETIFrame() {
	c.etiFrames.Inc()
}

// TxFrame records one emitted transmission frame.
func (c *Collector) TxFrame() {
	c.txFrames.Inc()
}

// RSErasuresCorrected adds n Reed-Solomon erasures to the running total.
func (c *Collector) RSErasuresCorrected(n int) {
	c.rsErasuresFixed.Add(float64(n))
}

// SetGainFactor publishes the gain control stage's current scale factor.
func (c *Collector) SetGainFactor(factor float64) {
	c.gainFactor.Set(factor)
}

// ControlRequest records one remote-control request by verb (ping, get, set).
func (c *Collector) ControlRequest(verb string) {
	c.controlRequests.WithLabelValues(verb).Inc()
}
