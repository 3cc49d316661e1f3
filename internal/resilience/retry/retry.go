// Package retry classifies provider failures as retryable or permanent.
// The retry scheduler consults this classification to decide whether a failed
// delivery attempt is re-queued with backoff or fails permanently.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// TransientError marks a provider failure as worth retrying: the same attempt
// may succeed later without any change on our side.
type TransientError struct {
	Message string
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return e.Message
}

// PermanentError marks a provider failure as not worth retrying: repeating
// the attempt cannot succeed (bad recipient, rejected payload, revoked
// credentials).
type PermanentError struct {
	Message string
}

// Error implements the error interface.
func (e *PermanentError) Error() string {
	return e.Message
}

// HTTPError represents an HTTP-level provider failure with a status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Transient wraps a message as a TransientError.
func Transient(format string, args ...any) error {
	return &TransientError{Message: fmt.Sprintf(format, args...)}
}

// Permanent wraps a message as a PermanentError.
func Permanent(format string, args ...any) error {
	return &PermanentError{Message: fmt.Sprintf(format, args...)}
}

// IsRetryable determines whether a provider failure is worth retrying.
//
// Classification rules:
//   - Explicit TransientError → retryable; PermanentError → not
//   - Network timeouts and connection-level syscall errors → retryable,
//     including per-attempt deadlines surfaced through the transport
//   - Caller cancellation → not retryable
//   - HTTP 5xx, 429, and 408 → retryable; other 4xx → not
//   - Anything unclassified → retryable, so an unknown transport failure
//     cannot silently bypass the retry path
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return false
	}
	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}

	// http.Client surfaces an expired attempt deadline as a *url.Error that
	// wraps context.DeadlineExceeded, so timeouts must be checked before the
	// bare context sentinels. Only caller cancellation is permanent.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode >= 500 && httpErr.StatusCode < 600 {
			return true
		}
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		if httpErr.StatusCode == http.StatusRequestTimeout {
			return true
		}
		return false
	}

	return true
}
