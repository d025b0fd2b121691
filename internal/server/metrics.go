package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the engine API.
type Metrics struct {
	// Requests by operation and outcome ("ok", "invalid", "error")
	Requests *prometheus.CounterVec

	// Engine latency by operation
	Latency *prometheus.HistogramVec

	// Size of returned boundary sequences
	BoundaryCount prometheus.Histogram
}

// NewMetrics registers the API metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logviz_requests_total",
			Help: "Total engine API requests by operation and outcome",
		}, []string{"operation", "outcome"}),

		Latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logviz_request_duration_seconds",
			Help:    "Duration of engine API requests by operation",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		}, []string{"operation"}),

		BoundaryCount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "logviz_boundaries_returned",
			Help:    "Number of boundaries in generated sequences",
			Buckets: prometheus.LinearBuckets(2, 8, 10),
		}),
	}
}

// Observe records one finished request.
func (m *Metrics) Observe(operation, outcome string, d time.Duration) {
	if m != nil {
		m.Requests.WithLabelValues(operation, outcome).Inc()
		m.Latency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// ObserveBoundaries records the length of a generated sequence.
func (m *Metrics) ObserveBoundaries(n int) {
	if m != nil {
		m.BoundaryCount.Observe(float64(n))
	}
}
