// Package slo tracks the notification engine's service level objectives.
package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets define the service level objectives for the engine.
// These targets are used to measure and monitor delivery reliability.
const (
	// DeliverySuccessSLO defines the target ratio of deliveries that reach
	// a sent state within the retry budget (99.5%)
	DeliverySuccessSLO = 99.5

	// DispatchLatencyP95SLO defines the target for 95th percentile dispatch
	// API latency in seconds (200ms)
	DispatchLatencyP95SLO = 0.200

	// FirstAttemptLatencySLO defines the target time from enqueue to first
	// provider attempt in seconds (5s)
	FirstAttemptLatencySLO = 5.0

	// ErrorRateSLO defines the maximum acceptable API error rate as a ratio
	ErrorRateSLO = 0.001
)

// SLO tracking metrics. These gauges are updated periodically (the worker's
// sweep) based on recent measurements to track whether the engine is meeting
// its targets.
var (
	// SLODeliverySuccess tracks the current delivery success ratio (0-1),
	// calculated as: sent / (sent + permanently_failed)
	SLODeliverySuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_delivery_success_ratio",
			Help: "Current delivery success ratio (0-1), target: 0.995",
		},
	)

	// SLODispatchLatencyP95 tracks the current p95 dispatch API latency in
	// seconds, calculated from http_request_duration_seconds
	SLODispatchLatencyP95 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_dispatch_latency_p95_seconds",
			Help: "Current p95 dispatch latency in seconds, target: 0.200",
		},
	)

	// SLOErrorRate tracks the current API error rate ratio (0-1)
	SLOErrorRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_error_rate_ratio",
			Help: "Current error rate ratio (0-1), target: 0.001",
		},
	)
)

// UpdateDeliverySuccess updates the delivery success ratio metric.
// Call this periodically with: sent / (sent + permanently_failed).
func UpdateDeliverySuccess(ratio float64) {
	SLODeliverySuccess.Set(ratio)
}

// UpdateDispatchLatencyP95 updates the p95 latency metric.
//
// Example using Prometheus query:
//
//	histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
func UpdateDispatchLatencyP95(seconds float64) {
	SLODispatchLatencyP95.Set(seconds)
}

// UpdateErrorRate updates the error rate metric.
func UpdateErrorRate(ratio float64) {
	SLOErrorRate.Set(ratio)
}
