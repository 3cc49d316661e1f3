package config

import (
	"log/slog"
	"time"
)

// ChannelLimits holds the outbound rate and timeout settings for a single
// delivery gateway channel.
type ChannelLimits struct {
	// WebhookURL is the gateway endpoint for this channel. Empty means the
	// channel uses the in-process no-op provider.
	WebhookURL string

	// RequestsPerSecond is the sustained send rate toward the gateway.
	RequestsPerSecond float64

	// Burst is the number of sends allowed above the sustained rate.
	Burst int

	// Timeout bounds a single gateway request.
	Timeout time.Duration
}

// DeliveryLimitsConfig holds the per-channel outbound limits for the
// notification gateways.
type DeliveryLimitsConfig struct {
	Push  ChannelLimits
	Email ChannelLimits
	SMS   ChannelLimits
}

// LoadDeliveryLimits loads the per-channel gateway configuration from
// environment variables.
//
// This function reads all delivery limit configuration from environment
// variables and returns a validated DeliveryLimitsConfig. If any values are
// invalid, it logs warnings and uses safe defaults instead of failing.
//
// Environment variables (per channel, CHANNEL in {PUSH, EMAIL, SMS}):
//   - <CHANNEL>_WEBHOOK_URL: Gateway endpoint (default: "" = no-op provider)
//   - <CHANNEL>_RPS: Sustained requests per second (default: 10; SMS: 2)
//   - <CHANNEL>_BURST: Burst allowance (default: 20; SMS: 5)
//   - <CHANNEL>_TIMEOUT: Per-request timeout (default: 10s)
//
// SMS defaults are tighter because SMS gateways meter per-message and
// throttle aggressively.
//
// Returns:
//   - *DeliveryLimitsConfig: Validated configuration with defaults applied
//   - error: Always nil (validation failures result in warnings and defaults)
func LoadDeliveryLimits() (*DeliveryLimitsConfig, error) {
	cfg := &DeliveryLimitsConfig{
		Push:  loadChannelLimits("PUSH", 10, 20),
		Email: loadChannelLimits("EMAIL", 10, 20),
		SMS:   loadChannelLimits("SMS", 2, 5),
	}
	return cfg, nil
}

func loadChannelLimits(prefix string, defaultRPS float64, defaultBurst int) ChannelLimits {
	limits := ChannelLimits{
		WebhookURL: GetEnvString(prefix+"_WEBHOOK_URL", ""),
	}

	rps := float64(GetEnvInt(prefix+"_RPS", int(defaultRPS)))
	if rps <= 0 {
		slog.Warn("invalid gateway rate, using default",
			slog.String("key", prefix+"_RPS"),
			slog.Float64("value", rps),
			slog.Float64("default", defaultRPS))
		rps = defaultRPS
	}
	limits.RequestsPerSecond = rps

	burst := GetEnvInt(prefix+"_BURST", defaultBurst)
	if burst <= 0 {
		slog.Warn("invalid gateway burst, using default",
			slog.String("key", prefix+"_BURST"),
			slog.Int("value", burst),
			slog.Int("default", defaultBurst))
		burst = defaultBurst
	}
	limits.Burst = burst

	timeout := GetEnvDuration(prefix+"_TIMEOUT", 10*time.Second)
	if err := ValidatePositiveDuration(timeout); err != nil {
		slog.Warn("invalid gateway timeout, using default",
			slog.String("key", prefix+"_TIMEOUT"),
			slog.String("value", timeout.String()),
			slog.String("default", "10s"),
			slog.String("error", err.Error()))
		timeout = 10 * time.Second
	}
	limits.Timeout = timeout

	return limits
}
