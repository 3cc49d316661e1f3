// Package config loads application-level configuration files for the
// notification engine: branding facts interpolated into copy and per-channel
// enable flags.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// BrandingConfig carries the brand facts the content builder and email
// renderer interpolate into every message.
type BrandingConfig struct {
	Branding struct {
		// BrandName is the product name shown in email headers and the SMS prefix.
		BrandName string `yaml:"brand_name"`

		// SMSPrefix is the fixed tag every SMS message begins with,
		// e.g. "[TripHerd] ". Derived from BrandName when empty.
		SMSPrefix string `yaml:"sms_prefix"`

		// AppRootURL is the application root used when an event carries no
		// trip identifier for CTA URL construction.
		AppRootURL string `yaml:"app_root_url"`

		// CTALabel is the fixed call-to-action label in emails.
		CTALabel string `yaml:"cta_label"`

		// FooterDisclosure is the fixed disclosure text in email footers.
		FooterDisclosure string `yaml:"footer_disclosure"`

		// SettingsURL links recipients to their notification preferences.
		SettingsURL string `yaml:"settings_url"`
	} `yaml:"branding"`

	Channels struct {
		Push  bool `yaml:"push"`
		Email bool `yaml:"email"`
		SMS   bool `yaml:"sms"`
	} `yaml:"channels"`
}

// DefaultBranding returns the compiled-in branding used when no config file
// is present or the file fails to load.
func DefaultBranding() *BrandingConfig {
	cfg := &BrandingConfig{}
	cfg.Branding.BrandName = "TripHerd"
	cfg.Branding.SMSPrefix = "[TripHerd] "
	cfg.Branding.AppRootURL = "https://app.tripherd.example"
	cfg.Branding.CTALabel = "Open in TripHerd"
	cfg.Branding.FooterDisclosure = "You are receiving this because you are a participant on this trip."
	cfg.Branding.SettingsURL = "https://app.tripherd.example/settings/notifications"
	cfg.Channels.Push = true
	cfg.Channels.Email = true
	cfg.Channels.SMS = true
	return cfg
}

// LoadBranding loads branding configuration from a YAML file. Loading is
// fail-open: a missing or invalid file logs a warning and returns the
// defaults, because degraded branding is preferable to failing to notify.
// The path is expected to come from a trusted source (CLI arg or env).
func LoadBranding(path string) *BrandingConfig {
	if path == "" {
		return DefaultBranding()
	}

	// #nosec G304 -- path comes from a trusted source (CLI arg or env), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("branding config unreadable, using defaults",
			slog.String("path", path),
			slog.Any("error", err))
		return DefaultBranding()
	}

	cfg := DefaultBranding()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("branding config unparsable, using defaults",
			slog.String("path", path),
			slog.Any("error", err))
		return DefaultBranding()
	}

	if err := validateBranding(cfg); err != nil {
		slog.Warn("branding config invalid, using defaults",
			slog.String("path", path),
			slog.Any("error", err))
		return DefaultBranding()
	}

	normalizeBranding(cfg)
	return cfg
}

// validateBranding checks the fields that would break copy generation.
func validateBranding(cfg *BrandingConfig) error {
	if cfg.Branding.BrandName == "" {
		return fmt.Errorf("brand_name is required")
	}
	if cfg.Branding.AppRootURL != "" {
		u, err := url.Parse(cfg.Branding.AppRootURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("app_root_url must be an absolute http(s) URL")
		}
	}
	return nil
}

// normalizeBranding fills derived fields and trims trailing slashes so URL
// joining stays predictable.
func normalizeBranding(cfg *BrandingConfig) {
	if cfg.Branding.SMSPrefix == "" {
		cfg.Branding.SMSPrefix = "[" + cfg.Branding.BrandName + "] "
	}
	cfg.Branding.AppRootURL = strings.TrimRight(cfg.Branding.AppRootURL, "/")
}

// EnabledChannels returns the globally enabled channels in stable order.
// Per-recipient gating still applies on top of these flags.
func (c *BrandingConfig) EnabledChannels() []string {
	var channels []string
	if c.Channels.Push {
		channels = append(channels, "push")
	}
	if c.Channels.Email {
		channels = append(channels, "email")
	}
	if c.Channels.SMS {
		channels = append(channels, "sms")
	}
	return channels
}
