package config

import (
	"testing"
	"time"
)

func TestGetEnvString(t *testing.T) {
	if got := GetEnvString("SMS_WEBHOOK_URL", "https://sms.example/send"); got != "https://sms.example/send" {
		t.Errorf("unset var = %q, want default", got)
	}
	t.Setenv("SMS_WEBHOOK_URL", "https://gateway.example/v2")
	if got := GetEnvString("SMS_WEBHOOK_URL", "https://sms.example/send"); got != "https://gateway.example/v2" {
		t.Errorf("set var = %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset", "", 50},
		{"valid", "120", 120},
		{"garbage falls back", "many", 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("PUSH_RPS", tt.value)
			}
			if got := GetEnvInt("PUSH_RPS", 50); got != tt.want {
				t.Errorf("GetEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	if got := GetEnvDuration("PUSH_TIMEOUT", 10*time.Second); got != 10*time.Second {
		t.Errorf("unset var = %v, want 10s", got)
	}
	t.Setenv("PUSH_TIMEOUT", "45s")
	if got := GetEnvDuration("PUSH_TIMEOUT", 10*time.Second); got != 45*time.Second {
		t.Errorf("set var = %v, want 45s", got)
	}
	t.Setenv("PUSH_TIMEOUT", "soon")
	if got := GetEnvDuration("PUSH_TIMEOUT", 10*time.Second); got != 10*time.Second {
		t.Errorf("garbage var = %v, want fallback 10s", got)
	}
}

func TestValidatePositiveDuration(t *testing.T) {
	if err := ValidatePositiveDuration(time.Second); err != nil {
		t.Errorf("positive duration rejected: %v", err)
	}
	if err := ValidatePositiveDuration(0); err == nil {
		t.Error("zero duration accepted")
	}
	if err := ValidatePositiveDuration(-time.Second); err == nil {
		t.Error("negative duration accepted")
	}
}
