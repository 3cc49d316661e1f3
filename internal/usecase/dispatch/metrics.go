package dispatch

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tripnotify/internal/observability/slo"
)

// Prometheus metrics for the dispatch service.
var (
	// dispatchTotal counts dispatch requests per notification type.
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_total",
			Help: "Total number of dispatch requests processed",
		},
		[]string{"type"},
	)

	// deliveryRecordsTotal counts delivery records created, labeled with the
	// evaluator's initial status.
	deliveryRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_delivery_records_total",
			Help: "Total number of delivery records created per channel and initial status",
		},
		[]string{"channel", "status"},
	)

	// skippedTotal counts ineligible deliveries per machine-readable reason.
	skippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_skipped_total",
			Help: "Total number of deliveries skipped by eligibility gating",
		},
		[]string{"reason"},
	)

	// deliveryOutcomesTotal counts terminal delivery outcomes.
	deliveryOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_delivery_outcomes_total",
			Help: "Total number of terminal delivery outcomes per channel",
		},
		[]string{"channel", "outcome"},
	)
)

// RecordDispatch records one processed dispatch request.
func RecordDispatch(notificationType string) {
	dispatchTotal.WithLabelValues(notificationType).Inc()
}

// RecordDeliveryRecord records one created delivery record.
func RecordDeliveryRecord(channel, status string) {
	deliveryRecordsTotal.WithLabelValues(channel, status).Inc()
}

// RecordSkipped records one delivery skipped by eligibility gating.
func RecordSkipped(reason string) {
	skippedTotal.WithLabelValues(reason).Inc()
}

// Running outcome totals feeding the SLO gauges.
var (
	outcomesSent   atomic.Int64
	outcomesFailed atomic.Int64
)

// RecordOutcome records one terminal delivery outcome ("sent" or "failed")
// and refreshes the measured delivery-success and error-rate SLO gauges.
func RecordOutcome(channel, outcome string) {
	deliveryOutcomesTotal.WithLabelValues(channel, outcome).Inc()

	if outcome == "sent" {
		outcomesSent.Add(1)
	} else {
		outcomesFailed.Add(1)
	}
	sent := outcomesSent.Load()
	failed := outcomesFailed.Load()
	total := sent + failed
	if total > 0 {
		slo.UpdateDeliverySuccess(float64(sent) / float64(total))
		slo.UpdateErrorRate(float64(failed) / float64(total))
	}
}
