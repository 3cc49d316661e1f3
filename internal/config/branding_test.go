package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "branding.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadBranding(t *testing.T) {
	t.Run("valid file overrides defaults", func(t *testing.T) {
		path := writeTempConfig(t, `
branding:
  brand_name: Wayfare
  app_root_url: https://wayfare.example/
  cta_label: View trip
  footer_disclosure: Participant notification.
  settings_url: https://wayfare.example/settings
channels:
  push: true
  email: true
  sms: false
`)
		cfg := LoadBranding(path)
		assert.Equal(t, "Wayfare", cfg.Branding.BrandName)
		// SMS prefix is derived from the brand name when not set.
		assert.Equal(t, "[Wayfare] ", cfg.Branding.SMSPrefix)
		// Trailing slash is trimmed for predictable URL joining.
		assert.Equal(t, "https://wayfare.example", cfg.Branding.AppRootURL)
		assert.Equal(t, []string{"push", "email"}, cfg.EnabledChannels())
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg := LoadBranding(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Equal(t, DefaultBranding().Branding.BrandName, cfg.Branding.BrandName)
	})

	t.Run("empty path uses defaults", func(t *testing.T) {
		cfg := LoadBranding("")
		assert.Equal(t, "TripHerd", cfg.Branding.BrandName)
		assert.NotEmpty(t, cfg.Branding.SMSPrefix)
		assert.NotEmpty(t, cfg.Branding.FooterDisclosure)
	})

	t.Run("invalid yaml falls back to defaults", func(t *testing.T) {
		path := writeTempConfig(t, "branding: [not a mapping")
		cfg := LoadBranding(path)
		assert.Equal(t, "TripHerd", cfg.Branding.BrandName)
	})

	t.Run("non-http root url rejected", func(t *testing.T) {
		path := writeTempConfig(t, `
branding:
  brand_name: Wayfare
  app_root_url: ftp://wayfare.example
`)
		cfg := LoadBranding(path)
		assert.Equal(t, "TripHerd", cfg.Branding.BrandName)
	})
}
