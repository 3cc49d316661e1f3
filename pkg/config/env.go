package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// GetEnvString returns an environment variable's value, or the default when
// the variable is unset or empty. No validation, no logging.
func GetEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt parses an environment variable as an integer. A set-but-garbage
// value logs a warning and yields the default, so a typo in gateway limits
// degrades to the built-in limit instead of failing startup.
func GetEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", defaultValue),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return value
}

// GetEnvDuration parses an environment variable with time.ParseDuration
// ("30s", "1m", "1h30m"), warning and falling back on bad input.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", defaultValue.String()),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return value
}
