package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// timeoutWriter serializes the race between a slow handler and the 504
// path. Once expire() has answered, handler writes fail with
// http.ErrHandlerTimeout; once the handler has written, expire() is a no-op.
type timeoutWriter struct {
	http.ResponseWriter

	mu      sync.Mutex
	expired bool
	written bool
}

func (w *timeoutWriter) WriteHeader(statusCode int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.expired || w.written {
		return
	}
	w.written = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *timeoutWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !w.written {
		w.written = true
		w.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func (w *timeoutWriter) expire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.expired = true
	if w.written {
		return
	}
	w.ResponseWriter.Header().Set("Content-Type", "application/json")
	w.ResponseWriter.WriteHeader(http.StatusGatewayTimeout)
	_, _ = w.ResponseWriter.Write([]byte(`{"error":"request timeout"}`))
}

// Timeout bounds whole-request wall time, answering 504 when the handler
// overruns. The overrunning handler keeps running against a cancelled
// context and a writer that swallows its late output.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()

			guarded := &timeoutWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				next.ServeHTTP(guarded, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				guarded.expire()
			}
		})
	}
}
