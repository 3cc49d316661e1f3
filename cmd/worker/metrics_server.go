package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	hhttp "tripnotify/internal/handler/http"
	hnotification "tripnotify/internal/handler/http/notification"
	"tripnotify/internal/handler/http/requestid"
	"tripnotify/internal/repository"
	"tripnotify/internal/usecase/dispatch"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// startIngestServer starts the worker's HTTP server on the specified port.
// It runs in a separate goroutine and supports graceful shutdown via context.
//
// The server exposes the following endpoints:
//   - POST /notifications/dispatch - Accept a dispatch request into the engine
//   - POST /notifications/preview - Render the content matrix without sending
//   - GET  /notifications/queue - Retry queue snapshot
//   - GET  /notifications/history - Paginated delivery history (when configured)
//   - GET  /notifications/{id}/deliveries - Stored records for one notification
//   - GET  /metrics - Prometheus metrics endpoint (scraped by Prometheus server)
//   - GET  /health - Simple liveness probe (always returns 200 OK)
//
// Environment variables:
//   - INGEST_PORT: Port to listen on (default: 9090)
//
// Graceful shutdown:
//   - When ctx is canceled, the server gracefully shuts down within 5 seconds
//   - All in-flight requests are allowed to complete
//   - Shutdown errors are logged but do not block process termination
func startIngestServer(ctx context.Context, logger *slog.Logger, svc dispatch.Service, history repository.DeliveryHistoryRepository) *http.Server {
	port := getIngestPort()

	mux := http.NewServeMux()
	hnotification.Register(mux, svc, nil, history)

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)

	// Lighter chain than the API binary: this port is internal-only.
	var handler http.Handler = mux
	handler = hhttp.LimitRequestBody(1 << 20)(handler)
	handler = hhttp.Logging(logger)(handler)
	handler = hhttp.Recover(logger)(handler)
	handler = requestid.Middleware(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in background goroutine
	go func() {
		logger.Info("ingest server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ingest server error", slog.Any("error", err))
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("ingest server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("ingest server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("ingest server stopped")
		}
	}()

	return server
}

// getIngestPort retrieves the ingest server port from environment variable.
// Defaults to 9090 if not set or invalid.
func getIngestPort() int {
	portStr := os.Getenv("INGEST_PORT")
	if portStr == "" {
		return 9090 // default
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 9090 // default on invalid value
	}

	return port
}

// healthHandler handles GET /health requests (liveness probe).
// Always returns 200 OK with {"status": "healthy"}.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}
