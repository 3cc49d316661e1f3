package pagination

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_pagination_requests_total",
			Help: "Delivery history page requests by status and page depth",
		},
		[]string{"status", "page_range"},
	)

	durationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delivery_pagination_duration_seconds",
			Help:    "Delivery history request duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
		},
		[]string{"operation"},
	)

	historyTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "delivery_history_total_count",
			Help: "Delivery records currently in the history store",
		},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_pagination_errors_total",
			Help: "Delivery history request failures by cause",
		},
		[]string{"type"},
	)
)

// RecordRequest counts one history request. The page number is bucketed so
// deep-pagination abuse shows up as its own series instead of a label per page.
func RecordRequest(statusCode int, page int) {
	requestsTotal.WithLabelValues(strconv.Itoa(statusCode), pageRange(page)).Inc()
}

// RecordDuration observes how long an operation took, in seconds.
func RecordDuration(operation string, seconds float64) {
	durationSeconds.WithLabelValues(operation).Observe(seconds)
}

// UpdateTotalCount publishes the latest COUNT of stored delivery records.
func UpdateTotalCount(count int64) {
	historyTotal.Set(float64(count))
}

// RecordError counts a failed request; errorType is "validation" or "database".
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}

func pageRange(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}
