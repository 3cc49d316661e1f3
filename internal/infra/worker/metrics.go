package worker

import (
	"time"

	"tripnotify/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the retry worker component.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// worker-specific metrics for retry pass execution tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Worker-specific metrics:
//   - worker_retry_pass_runs_total: Total retry passes by status (success/failure)
//   - worker_retry_pass_duration_seconds: Duration histogram of retry pass execution
//   - worker_retry_operations_processed_total: Total queued operations attempted
//   - worker_retry_pass_last_success_timestamp: Unix timestamp of last successful pass
//   - worker_queue_depth: Current number of operations awaiting retry
//
// Example usage:
//
//	metrics := NewWorkerMetrics()
//	metrics.MustRegister()
//
//	start := time.Now()
//	attempted := queue.Process(ctx)
//	metrics.RecordPassDuration(time.Since(start).Seconds())
//	metrics.RecordPassRun("success")
//	metrics.RecordOperationsProcessed(attempted)
//	metrics.RecordLastSuccess()
type WorkerMetrics struct {
	// Embedded configuration metrics
	*config.ConfigMetrics

	// RetryPassRunsTotal counts the total number of retry passes.
	// Type: Counter
	// Labels: status (success, failure)
	// Usage: Increment after each pass based on success/failure
	RetryPassRunsTotal *prometheus.CounterVec

	// RetryPassDurationSeconds measures the duration of retry pass execution.
	// Type: Histogram
	// Labels: none
	// Buckets: 10ms-30s (a pass is bounded by per-attempt timeouts)
	// Usage: Observe duration at the end of each pass
	RetryPassDurationSeconds prometheus.Histogram

	// RetryOperationsProcessedTotal counts the queued operations attempted per pass.
	// Type: Counter
	// Labels: none
	// Usage: Add the number of due operations attempted after each pass
	RetryOperationsProcessedTotal prometheus.Counter

	// RetryPassLastSuccessTimestamp records the Unix timestamp of the last successful pass.
	// Type: Gauge
	// Labels: none
	// Usage: Set to current time when a pass completes without error
	RetryPassLastSuccessTimestamp prometheus.Gauge

	// QueueDepth reports the current number of operations awaiting retry.
	// Type: Gauge
	// Labels: none
	// Usage: Set from the queue snapshot during the reconciliation sweep
	QueueDepth prometheus.Gauge
}

// NewWorkerMetrics creates a new WorkerMetrics instance with all metrics initialized.
// Metrics are created but not registered with Prometheus. Call MustRegister() to register.
//
// Returns:
//   - *WorkerMetrics: Initialized metrics ready for registration
//
// Example:
//
//	metrics := NewWorkerMetrics()
//	metrics.MustRegister()  // Register with Prometheus
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		RetryPassRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_retry_pass_runs_total",
			Help: "Total number of retry passes by status (success/failure)",
		}, []string{"status"}),

		RetryPassDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_retry_pass_duration_seconds",
			Help:    "Duration of retry pass execution in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30}, // 10ms-30s
		}),

		RetryOperationsProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_retry_operations_processed_total",
			Help: "Total number of queued operations attempted across all retry passes",
		}),

		RetryPassLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_retry_pass_last_success_timestamp",
			Help: "Unix timestamp of the last successful retry pass",
		}),

		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current number of operations awaiting retry",
		}),
	}
}

// MustRegister is a no-op method for API compatibility.
// Metrics are automatically registered via promauto when created in NewWorkerMetrics.
//
// This method exists to maintain consistency with the expected metrics initialization pattern:
//
//	metrics := NewWorkerMetrics()
//	metrics.MustRegister()
//
// Even though registration happens automatically, this explicit call makes the
// initialization intent clear and maintains compatibility with future changes.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordPassRun increments the retry pass counter for the given status.
// Status should be either "success" or "failure".
//
// Parameters:
//   - status: Pass execution status ("success" or "failure")
func (m *WorkerMetrics) RecordPassRun(status string) {
	m.RetryPassRunsTotal.WithLabelValues(status).Inc()
}

// RecordPassDuration observes the duration of a retry pass execution.
// Duration should be in seconds.
//
// Parameters:
//   - seconds: Pass execution duration in seconds
func (m *WorkerMetrics) RecordPassDuration(seconds float64) {
	m.RetryPassDurationSeconds.Observe(seconds)
}

// RecordOperationsProcessed adds the number of attempted operations to the total counter.
//
// Parameters:
//   - count: Number of due operations attempted in this pass
func (m *WorkerMetrics) RecordOperationsProcessed(count int) {
	m.RetryOperationsProcessedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful pass completion.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.RetryPassLastSuccessTimestamp.SetToCurrentTime()
}

// SetQueueDepth updates the queue depth gauge from a snapshot taken at time
// of observation. Stale values are acceptable between sweeps.
func (m *WorkerMetrics) SetQueueDepth(depth int) {
	m.QueueDepth.Set(float64(depth))
}

// ObservePass is a convenience helper that records a complete pass outcome:
// run status, duration, and operations attempted. On success it also updates
// the last-success timestamp.
func (m *WorkerMetrics) ObservePass(start time.Time, attempted int, err error) {
	m.RecordPassDuration(time.Since(start).Seconds())
	m.RecordOperationsProcessed(attempted)
	if err != nil {
		m.RecordPassRun("failure")
		return
	}
	m.RecordPassRun("success")
	m.RecordLastSuccess()
}
