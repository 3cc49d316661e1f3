// Package metrics provides centralized Prometheus metrics for the
// notification engine's transport and provider boundaries. Domain packages
// (dispatch, content, retryqueue) register their own metrics locally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Provider metrics track calls across the delivery-provider boundary
var (
	// ProviderCallsTotal counts provider calls by channel and result
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_calls_total",
			Help: "Total number of delivery provider calls",
		},
		[]string{"channel", "result"}, // result: success, failure
	)

	// ProviderCallDuration measures provider call duration per channel
	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_call_duration_seconds",
			Help:    "Delivery provider call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"channel"},
	)

	// DispatchFanoutSize measures how many delivery records one dispatch
	// request produced
	DispatchFanoutSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_fanout_size",
			Help:    "Delivery records produced per dispatch request",
			Buckets: []float64{1, 3, 10, 30, 100, 300, 1000},
		},
	)

	// QueueOldestAgeSeconds tracks the age of the oldest pending retry
	// operation, updated by the worker's sweep
	QueueOldestAgeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retry_queue_oldest_age_seconds",
			Help: "Age in seconds of the oldest pending retry operation",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordProviderCall records one delivery provider call.
func RecordProviderCall(channel string, duration time.Duration, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	ProviderCallsTotal.WithLabelValues(channel, result).Inc()
	ProviderCallDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordDispatchFanout records the number of delivery records one dispatch
// request produced.
func RecordDispatchFanout(records int) {
	DispatchFanoutSize.Observe(float64(records))
}

// UpdateQueueOldestAge updates the oldest pending operation age gauge.
// Call this from the worker's periodic sweep.
func UpdateQueueOldestAge(age time.Duration) {
	QueueOldestAgeSeconds.Set(age.Seconds())
}
