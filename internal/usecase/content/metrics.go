package content

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for content generation.
var (
	// contentBuiltTotal counts built content variants per type and channel.
	contentBuiltTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_content_built_total",
			Help: "Total number of content variants built",
		},
		[]string{"type", "channel"},
	)

	// templateFallbackTotal counts events that hit the generic fallback
	// template because their type had no entry in the template table.
	templateFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_template_fallback_total",
			Help: "Total number of events rendered with the generic fallback template",
		},
		[]string{"type"},
	)

	// smsTruncatedTotal counts SMS messages that exceeded the hard length
	// limit after prefixing and had to be re-truncated.
	smsTruncatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_sms_truncated_total",
			Help: "Total number of SMS messages truncated to the hard length limit",
		},
	)
)

// RecordBuilt records one built content variant.
func RecordBuilt(notificationType, channel string) {
	contentBuiltTotal.WithLabelValues(notificationType, channel).Inc()
}

// RecordTemplateFallback records an event rendered with the generic template.
func RecordTemplateFallback(notificationType string) {
	templateFallbackTotal.WithLabelValues(notificationType).Inc()
}

// RecordSMSTruncated records an SMS message truncated at the hard limit.
func RecordSMSTruncated() {
	smsTruncatedTotal.Inc()
}
