package provider

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter implements token bucket rate limiting for provider calls.
// It keeps the engine from overwhelming a delivery gateway during a large
// dispatch fan-out.
type RateLimiter struct {
	rate    rate.Limit
	burst   int
	limiter *rate.Limiter
}

// NewRateLimiter creates a RateLimiter with the specified rate and burst
// capacity.
//
// Parameters:
//   - requestsPerSecond: Maximum sustained request rate (e.g., 10.0)
//   - burst: Maximum number of requests that can be made in a burst
//
// The token bucket allows up to 'burst' requests immediately, then refills
// tokens at 'requestsPerSecond'.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	r := rate.Limit(requestsPerSecond)
	return &RateLimiter{
		rate:    r,
		burst:   burst,
		limiter: rate.NewLimiter(r, burst),
	}
}

// Wait blocks until a token is available or the context is canceled.
// It should be called before each provider request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
