// Package metrics provides Prometheus metrics for the tenant edge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RouteDecisions counts terminal router decisions.
	RouteDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edge",
			Name:      "route_decisions_total",
			Help:      "Total number of routing decisions by kind and reason",
		},
		[]string{"decision", "reason"},
	)

	// ValidationTotal counts tenant validation calls to the backend.
	ValidationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edge",
			Name:      "validation_total",
			Help:      "Total number of tenant validation calls by outcome",
		},
		[]string{"outcome"},
	)

	// ValidationDuration measures tenant validation latency.
	ValidationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "edge",
			Name:      "validation_duration_seconds",
			Help:      "Duration of tenant validation calls in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// CacheLookups counts validation cache lookups.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edge",
			Name:      "cache_lookups_total",
			Help:      "Total number of validation cache lookups by result",
		},
		[]string{"result"},
	)

	// CacheInvalidations counts explicit cache invalidations.
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edge",
			Name:      "cache_invalidations_total",
			Help:      "Total number of validation cache invalidations by source",
		},
		[]string{"source"},
	)
)

// Validation outcomes.
const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

// RecordDecision records a router decision.
func RecordDecision(decision, reason string) {
	RouteDecisions.WithLabelValues(decision, reason).Inc()
}

// RecordValidation records a validation call.
func RecordValidation(outcome string, duration float64) {
	ValidationTotal.WithLabelValues(outcome).Inc()
	ValidationDuration.Observe(duration)
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordInvalidation records a cache invalidation.
func RecordInvalidation(source string) {
	CacheInvalidations.WithLabelValues(source).Inc()
}
