// Package metrics exposes Prometheus instrumentation for the prediction
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for predictionsTotal.
const (
	OutcomeRemote   = "remote"
	OutcomeFallback = "fallback"
)

var (
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "retain",
		Subsystem: "prediction",
		Name:      "predictions_total",
		Help:      "Predictions persisted, labeled by scoring outcome.",
	}, []string{"outcome", "result"})

	scorerLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "retain",
		Subsystem: "prediction",
		Name:      "scorer_request_seconds",
		Help:      "Remote scoring request latency in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	scorerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "retain",
		Subsystem: "prediction",
		Name:      "scorer_errors_total",
		Help:      "Remote scoring attempts that ended in fallback.",
	})
)

// ObservePrediction records one persisted prediction.
func ObservePrediction(outcome, result string) {
	predictionsTotal.WithLabelValues(outcome, result).Inc()
}

// ObserveScorerLatency records the duration of a remote scoring attempt.
func ObserveScorerLatency(d time.Duration) {
	scorerLatency.Observe(d.Seconds())
}

// ObserveScorerError records a failed remote scoring attempt.
func ObserveScorerError() {
	scorerErrors.Inc()
}
