package retryqueue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the retry scheduler.
var (
	// queueDepth tracks the number of operations currently queued.
	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_retry_queue_depth",
			Help: "Number of delivery operations currently queued",
		},
	)

	// inflightAttempts tracks attempts currently outstanding.
	inflightAttempts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_retry_inflight_attempts",
			Help: "Number of delivery attempts currently in flight",
		},
	)

	// attemptsTotal counts settled attempts by result.
	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_retry_attempts_total",
			Help: "Total number of settled delivery attempts",
		},
		[]string{"result"}, // result: success|retry|permanent_failure
	)
)

// SetQueueDepth updates the queue depth gauge.
func SetQueueDepth(depth int) {
	queueDepth.Set(float64(depth))
}

// SetInflight updates the in-flight attempts gauge.
func SetInflight(count int) {
	inflightAttempts.Set(float64(count))
}

// RecordAttempt records a settled attempt with its result.
func RecordAttempt(result string) {
	attemptsTotal.WithLabelValues(result).Inc()
}
