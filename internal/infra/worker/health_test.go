package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func probeMux(h *HealthServer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	return mux
}

func TestLivenessAlwaysOK(t *testing.T) {
	h := NewHealthServer(":0", quietLogger())
	mux := probeMux(h)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status body = %q, want ok", body.Status)
	}
}

func TestReadinessFollowsSetReady(t *testing.T) {
	h := NewHealthServer(":0", quietLogger())
	mux := probeMux(h)

	// Freshly constructed workers are not ready to process retries.
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/health/ready", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("initial readiness = %d, want 503", rr.Code)
	}

	h.SetReady(true)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/health/ready", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("readiness after SetReady(true) = %d, want 200", rr.Code)
	}

	// Draining flips it back before shutdown.
	h.SetReady(false)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/health/ready", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readiness after SetReady(false) = %d, want 503", rr.Code)
	}
}

func TestHealthServerGracefulShutdown(t *testing.T) {
	h := NewHealthServer("127.0.0.1:0", quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	// Give ListenAndServe a moment to bind before cancelling.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != http.ErrServerClosed {
			t.Errorf("Start() = %v, want http.ErrServerClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("health server did not shut down")
	}
}
