package worker

import (
	"fmt"
	"log/slog"
	"time"

	"tripnotify/internal/pkg/config"
)

// WorkerConfig holds the configuration for the retry worker component.
// It controls the retry poll interval, the cron-scheduled reconciliation
// sweep, delivery concurrency, and the health server port.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have defaults and validation rules so the worker can operate
// safely even with invalid or missing configuration.
type WorkerConfig struct {
	// SweepSchedule is the cron expression for the reconciliation sweep,
	// which refreshes backlog gauges and logs stuck operations.
	// Format: "minute hour day month weekday"
	// Default: "*/15 * * * *" (every 15 minutes)
	SweepSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Default: "UTC"
	Timezone string

	// PollInterval is how often the worker runs a retry-queue processing
	// pass. The shortest backoff step is 1s, so polling much slower than
	// that delays first retries.
	// Range: 100ms-1m
	// Default: 1s
	PollInterval time.Duration

	// DeliverMaxConcurrent is the maximum number of concurrent delivery
	// attempts per processing pass.
	// Range: 1-50
	// Default: 10
	DeliverMaxConcurrent int

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production defaults: a 1s retry
// poll to honor the shortest backoff step, a 15-minute sweep, and the
// conventional exporter port for health checks.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		SweepSchedule:        "*/15 * * * *",
		Timezone:             "UTC",
		PollInterval:         time.Second,
		DeliverMaxConcurrent: 10,
		HealthPort:           9091,
	}
}

// Validate checks if the configuration values are valid. If multiple fields
// are invalid, all errors are collected and returned together.
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.SweepSchedule); err != nil {
		errors = append(errors, fmt.Errorf("sweep schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.PollInterval, 100*time.Millisecond, time.Minute); err != nil {
		errors = append(errors, fmt.Errorf("poll interval: %w", err))
	}
	if err := config.ValidateIntRange(c.DeliverMaxConcurrent, 1, 50); err != nil {
		errors = append(errors, fmt.Errorf("deliver max concurrent: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables with validation and automatic fallback to defaults on failure.
//
// This function implements the fail-open strategy: every invalid value logs
// a warning, increments the fallback metrics, and falls back to the default.
// It never returns an error, so the worker always starts with a valid
// configuration.
//
// Environment variables:
//   - RETRY_SWEEP_SCHEDULE: Cron expression (default: "*/15 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - RETRY_POLL_INTERVAL: Duration string, e.g., "1s" (default: 1s)
//   - DELIVER_MAX_CONCURRENT: Integer 1-50 (default: 10)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvWithFallback("RETRY_SWEEP_SCHEDULE", cfg.SweepSchedule, config.ValidateCronSchedule)
	cfg.SweepSchedule = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("sweep_schedule")
		metrics.RecordFallback("sweep_schedule", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "SweepSchedule"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("timezone")
		metrics.RecordFallback("timezone", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "Timezone"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvDuration("RETRY_POLL_INTERVAL", cfg.PollInterval, func(d time.Duration) error {
		return config.ValidateDuration(d, 100*time.Millisecond, time.Minute)
	})
	cfg.PollInterval = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("poll_interval")
		metrics.RecordFallback("poll_interval", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "PollInterval"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("DELIVER_MAX_CONCURRENT", cfg.DeliverMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.DeliverMaxConcurrent = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("deliver_max_concurrent")
		metrics.RecordFallback("deliver_max_concurrent", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "DeliverMaxConcurrent"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "HealthPort"),
				slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
