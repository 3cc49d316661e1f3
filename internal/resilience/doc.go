// Package resilience provides reliability and fault tolerance patterns for
// the notification delivery engine.
//
// The package supports:
//   - Retryable-error classification for provider attempt outcomes (retry)
//   - The bounded-retry delivery scheduler with its in-flight set (retryqueue)
//   - Circuit breakers for provider endpoints (circuitbreaker)
//
// Usage Example:
//
//	q := retryqueue.New(deliver, retryqueue.Options{}, callbacks)
//	q.Enqueue(op, initialErr)
//	q.Process(ctx)
package resilience
