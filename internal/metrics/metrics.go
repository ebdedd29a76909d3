// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LinkChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "professor_link_checks_total",
			Help: "Reference link liveness checks, labeled by outcome.",
		},
		[]string{"outcome"},
	)
	LinkCheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "professor_link_check_duration_seconds",
			Help:    "Duration of a single reference link check in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	ReferenceAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "professor_reference_attempts",
			Help:    "Generation attempts used to produce one references slide.",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)
	SlidesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "professor_slides_generated_total",
			Help: "Slides produced by the generator, labeled by layout.",
		},
		[]string{"layout"},
	)
)

func init() {
	prometheus.MustRegister(LinkChecks)
	prometheus.MustRegister(LinkCheckDuration)
	prometheus.MustRegister(ReferenceAttempts)
	prometheus.MustRegister(SlidesGenerated)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
