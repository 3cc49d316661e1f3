package pagination

import (
	"context"
	"log/slog"
	"time"
)

func pageAttrs(requestID string, params Params) []slog.Attr {
	return []slog.Attr{
		slog.String("request_id", requestID),
		slog.Int("page", params.Page),
		slog.Int("limit", params.Limit),
	}
}

// LogRequest records an accepted history request with its page selection.
func LogRequest(logger *slog.Logger, requestID, userID string, params Params) {
	attrs := append(pageAttrs(requestID, params), slog.String("user_id", userID))
	logger.LogAttrs(context.Background(), slog.LevelInfo, "Paginated request", attrs...)
}

// LogResponse records a served page with its size and latency.
func LogResponse(logger *slog.Logger, requestID string, params Params, returnedCount int, duration time.Duration, statusCode int) {
	attrs := append(pageAttrs(requestID, params),
		slog.Int("returned_count", returnedCount),
		slog.Int64("duration_ms", duration.Milliseconds()),
		slog.Int("status", statusCode),
	)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "Paginated response", attrs...)
}

// LogError records a rejected or failed history request.
func LogError(logger *slog.Logger, requestID string, params Params, err error, errorType string) {
	attrs := append(pageAttrs(requestID, params),
		slog.String("error", err.Error()),
		slog.String("error_type", errorType),
	)
	logger.LogAttrs(context.Background(), slog.LevelError, "Pagination error", attrs...)
}
