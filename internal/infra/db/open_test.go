package db

import (
	"testing"
	"time"
)

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()

	if cfg.MaxOpenConns != 25 {
		t.Errorf("MaxOpenConns = %d, want 25", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns != 10 {
		t.Errorf("MaxIdleConns = %d, want 10", cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != time.Hour {
		t.Errorf("ConnMaxLifetime = %v, want 1h", cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime != 30*time.Minute {
		t.Errorf("ConnMaxIdleTime = %v, want 30m", cfg.ConnMaxIdleTime)
	}
}

func TestPoolConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("DB_MAX_IDLE_CONNS", "20")
	t.Setenv("DB_CONN_MAX_LIFETIME", "2h")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "15m")

	cfg := poolConfigFromEnv()

	if cfg.MaxOpenConns != 50 || cfg.MaxIdleConns != 20 {
		t.Errorf("conns = %d/%d, want 50/20", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != 2*time.Hour {
		t.Errorf("ConnMaxLifetime = %v, want 2h", cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime != 15*time.Minute {
		t.Errorf("ConnMaxIdleTime = %v, want 15m", cfg.ConnMaxIdleTime)
	}
}

func TestPoolConfigFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric open conns", "DB_MAX_OPEN_CONNS", "plenty"},
		{"zero open conns", "DB_MAX_OPEN_CONNS", "0"},
		{"negative idle conns", "DB_MAX_IDLE_CONNS", "-5"},
		{"unparseable lifetime", "DB_CONN_MAX_LIFETIME", "forever"},
		{"negative idle time", "DB_CONN_MAX_IDLE_TIME", "-1m"},
	}

	want := DefaultConnectionConfig()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if got := poolConfigFromEnv(); got != want {
				t.Errorf("poolConfigFromEnv() = %+v, want defaults %+v", got, want)
			}
		})
	}
}
