// Package config implements fail-open environment configuration for the
// delivery engine's long-running processes: loaders that fall back to a
// default on bad input instead of refusing to start, validators for the
// value shapes the worker uses, and Prometheus metrics exposing when a
// fallback happened.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult carries a loaded value together with the fallback
// outcome. Value holds the concrete type the loader produced (string,
// time.Duration or int); callers assert it back out. Warnings explains each
// applied fallback in operator-readable form.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

func loaded(value interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: value}
}

func fellBack(envKey, raw string, cause error, defaultValue interface{}) ConfigLoadResult {
	return ConfigLoadResult{
		Value:           defaultValue,
		Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, cause, defaultValue)},
		FallbackApplied: true,
	}
}

// LoadEnvWithFallback reads a string environment variable and runs it
// through validator. An unset variable silently yields the default; a set
// value that fails validation yields the default with a warning. The result
// is always usable, so a bad deploy-time value degrades rather than crashes.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}
	if validator != nil {
		if err := validator(raw); err != nil {
			return fellBack(envKey, raw, err, defaultValue)
		}
	}
	return loaded(raw)
}

// LoadEnvDuration reads a Go duration string ("1s", "5m", "1h30m") from the
// environment. Parse failures and validator rejections both fall back to the
// default with a warning; an unset variable yields the default silently.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fellBack(envKey, raw, err, defaultValue)
	}
	if validator != nil {
		if err := validator(d); err != nil {
			return fellBack(envKey, raw, err, defaultValue)
		}
	}
	return loaded(d)
}

// LoadEnvInt reads an integer from the environment with the same fallback
// behavior as LoadEnvDuration.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return loaded(defaultValue)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fellBack(envKey, raw, fmt.Errorf("invalid integer format"), defaultValue)
	}
	if validator != nil {
		if err := validator(v); err != nil {
			return fellBack(envKey, raw, err, defaultValue)
		}
	}
	return loaded(v)
}
