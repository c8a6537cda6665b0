package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records workflow outcomes on its own registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	refusals        *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_matcher_analysis_requests_total",
				Help: "Total number of analysis requests by outcome",
			},
			[]string{"outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resume_matcher_analysis_request_duration_seconds",
				Help:    "Duration of analysis requests in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"outcome"},
		),
		refusals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_matcher_submit_refusals_total",
				Help: "Total number of submit attempts refused before dispatch",
			},
			[]string{"reason"},
		),
	}

	m.Registry.MustRegister(m.requests, m.requestDuration, m.refusals)

	return m
}

// ObserveRequest records one completed remote call.
func (m *Metrics) ObserveRequest(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.requestDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveRefusal records a submit attempt that never reached the network.
func (m *Metrics) ObserveRefusal(reason string) {
	if m == nil {
		return
	}
	m.refusals.WithLabelValues(reason).Inc()
}

// WriteTextfile dumps the registry in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
