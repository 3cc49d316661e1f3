// Package http provides HTTP handlers and middleware for the notification
// engine's dispatch API: notification endpoints, health checks, metrics
// collection, and request middleware.
package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tripnotify/internal/domain/entity"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`    // Status of each check item
	Version   string                 `json:"version"`   // Application version
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string                 `json:"status"`            // "healthy" or "degraded"
	Message string                 `json:"message,omitempty"` // Optional status message
	Details map[string]interface{} `json:"details,omitempty"` // Optional additional details
}

// QueueSnapshotter exposes the retry queue's pending operations. Satisfied by
// the dispatch service.
type QueueSnapshotter interface {
	QueueSnapshot() []entity.QueuedOperation
}

// queueDepthWarnThreshold is the pending-operation count above which the
// retry queue check reports degraded.
const queueDepthWarnThreshold = 1000

// HealthHandler handles health check endpoint requests. It reports retry
// queue depth and backlog age so operators can spot a degrading provider
// before deliveries start failing permanently.
type HealthHandler struct {
	Queue   QueueSnapshotter
	Version string
}

// ServeHTTP returns the application health status. The retry queue check
// reports degraded (never unhealthy) on a deep backlog: a full queue means a
// provider is struggling, not that this process should be restarted.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]CheckStatus)

	if h.Queue != nil {
		checks["retry_queue"] = h.checkQueue()
	} else {
		checks["retry_queue"] = CheckStatus{
			Status:  "degraded",
			Message: "not configured",
		}
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("health: failed to encode response: %v", err)
	}
}

// checkQueue inspects the retry queue's pending operations.
func (h *HealthHandler) checkQueue() CheckStatus {
	snapshot := h.Queue.QueueSnapshot()

	status := "healthy"
	message := ""
	if len(snapshot) > queueDepthWarnThreshold {
		status = "degraded"
		message = "retry backlog is deep"
	}

	details := map[string]interface{}{
		"depth": len(snapshot),
	}
	if len(snapshot) > 0 {
		oldest := snapshot[0].ScheduledAt
		maxAttempts := 0
		for _, op := range snapshot {
			if op.ScheduledAt.Before(oldest) {
				oldest = op.ScheduledAt
			}
			if op.Attempts > maxAttempts {
				maxAttempts = op.Attempts
			}
		}
		details["oldest_scheduled_at"] = oldest.UTC().Format(time.RFC3339)
		details["max_attempts_seen"] = maxAttempts
	}

	return CheckStatus{
		Status:  status,
		Message: message,
		Details: details,
	}
}
