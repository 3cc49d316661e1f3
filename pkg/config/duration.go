package config

import (
	"fmt"
	"time"
)

// ValidatePositiveDuration rejects zero and negative durations. Gateway
// timeouts must be strictly positive; zero would mean no timeout at all.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}
