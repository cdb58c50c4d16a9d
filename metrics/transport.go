// metrics/transport.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TransportMetrics instruments outgoing Minesweeper API requests.
type TransportMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewTransportMetrics creates the collectors and registers them with reg.
// It panics if they are already registered, like prometheus.MustRegister.
func NewTransportMetrics(reg prometheus.Registerer) *TransportMetrics {
	m := &TransportMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "minesweeper",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests sent to the Minesweeper API, by response code and method.",
		}, []string{"code", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "minesweeper",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Round-trip latency of Minesweeper API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "minesweeper",
			Subsystem: "client",
			Name:      "in_flight_requests",
			Help:      "Minesweeper API requests currently waiting for a response.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.inFlight)
	return m
}

// Instrument wraps next, or http.DefaultTransport when next is nil.
// Requests that fail before a response arrives are not counted.
func (m *TransportMetrics) Instrument(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(m.inFlight,
		promhttp.InstrumentRoundTripperCounter(m.requests,
			promhttp.InstrumentRoundTripperDuration(m.duration, next)))
}

// HTTPClient returns a client whose transport is instrumented. It sets no timeout.
func (m *TransportMetrics) HTTPClient(next http.RoundTripper) *http.Client {
	return &http.Client{Transport: m.Instrument(next)}
}
