package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, endpoint and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pirizgpt",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration observes HTTP request latency per endpoint.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pirizgpt",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// CompletionErrorsTotal counts upstream model call failures.
	CompletionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pirizgpt",
			Subsystem: "completion",
			Name:      "errors_total",
			Help:      "Total completion call failures",
		},
		[]string{"mode"},
	)

	// TurnsStoredTotal counts persisted conversation turns by role.
	TurnsStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pirizgpt",
			Subsystem: "store",
			Name:      "turns_stored_total",
			Help:      "Total conversation turns written to the store",
		},
		[]string{"role"},
	)
)

// RecordRequest records one completed HTTP request.
func RecordRequest(method, endpoint, status string, durationSeconds float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordCompletionError records an upstream completion failure.
// mode is "chat" or "stream".
func RecordCompletionError(mode string) {
	CompletionErrorsTotal.WithLabelValues(mode).Inc()
}

// RecordTurnStored records one persisted turn.
func RecordTurnStored(role string) {
	TurnsStoredTotal.WithLabelValues(role).Inc()
}
