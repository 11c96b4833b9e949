package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sentinel"

// Metrics holds the Prometheus collectors for upstream traffic and tile fallbacks.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec   // labels: source, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: source
	UpstreamState    *prometheus.GaugeVec     // labels: source; 0 closed, 1 half-open, 2 open

	TilePlaceholders *prometheus.CounterVec // labels: layer
	SolarDefaults    *prometheus.CounterVec // labels: field
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.UpstreamState,
		m.TilePlaceholders,
		m.SolarDefaults,
	)

	return m
}

// NewMetricsForTesting creates unregistered metrics so tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outbound upstream requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),
		UpstreamState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_state",
			Help:      "Health monitor state per upstream source.",
		}, []string{"source"}),
		TilePlaceholders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tile_placeholders_total",
			Help:      "Tiles answered with the transparent placeholder, by layer.",
		}, []string{"layer"}),
		SolarDefaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solar_field_defaults_total",
			Help:      "Solar fields that fell back to their sentinel default.",
		}, []string{"field"}),
	}
}
