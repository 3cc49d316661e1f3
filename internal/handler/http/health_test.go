package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tripnotify/internal/domain/entity"
)

// stubQueue implements QueueSnapshotter with a fixed snapshot.
type stubQueue struct {
	ops []entity.QueuedOperation
}

func (s *stubQueue) QueueSnapshot() []entity.QueuedOperation {
	return s.ops
}

func TestHealthHandlerHealthyWithEmptyQueue(t *testing.T) {
	handler := &HealthHandler{Queue: &stubQueue{}, Version: "test"}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
	if resp.Version != "test" {
		t.Errorf("expected version test, got %q", resp.Version)
	}

	check, ok := resp.Checks["retry_queue"]
	if !ok {
		t.Fatal("expected retry_queue check")
	}
	if check.Status != "healthy" {
		t.Errorf("expected healthy queue check, got %q", check.Status)
	}
	if depth := check.Details["depth"].(float64); depth != 0 {
		t.Errorf("expected depth 0, got %v", depth)
	}
}

func TestHealthHandlerReportsQueueBacklog(t *testing.T) {
	oldest := time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC)
	queue := &stubQueue{
		ops: []entity.QueuedOperation{
			{ID: "op-1", Attempts: 2, ScheduledAt: oldest.Add(time.Minute)},
			{ID: "op-2", Attempts: 1, ScheduledAt: oldest},
		},
	}
	handler := &HealthHandler{Queue: queue, Version: "test"}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	check := resp.Checks["retry_queue"]
	if check.Details["depth"].(float64) != 2 {
		t.Errorf("expected depth 2, got %v", check.Details["depth"])
	}
	if check.Details["oldest_scheduled_at"] != oldest.Format(time.RFC3339) {
		t.Errorf("expected oldest %v, got %v", oldest.Format(time.RFC3339), check.Details["oldest_scheduled_at"])
	}
	if check.Details["max_attempts_seen"].(float64) != 2 {
		t.Errorf("expected max attempts 2, got %v", check.Details["max_attempts_seen"])
	}
}

func TestHealthHandlerDegradedOnDeepBacklog(t *testing.T) {
	ops := make([]entity.QueuedOperation, queueDepthWarnThreshold+1)
	for i := range ops {
		ops[i] = entity.QueuedOperation{ID: "op", ScheduledAt: time.Now()}
	}
	handler := &HealthHandler{Queue: &stubQueue{ops: ops}, Version: "test"}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Checks["retry_queue"].Status != "degraded" {
		t.Errorf("expected degraded, got %q", resp.Checks["retry_queue"].Status)
	}
	// Degraded queue must not flip overall health: the process itself is fine.
	if resp.Status != "healthy" {
		t.Errorf("expected healthy overall, got %q", resp.Status)
	}
}

func TestHealthHandlerWithoutQueue(t *testing.T) {
	handler := &HealthHandler{Version: "test"}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
