// Package respond writes JSON responses and keeps provider credentials and
// internal error detail out of what clients see.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent, so the failure can only be logged.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Phrases that mark an error as client-addressable. Anything else is treated
// as internal: logged (sanitized) and replaced with a generic message, so a
// gateway error carrying a webhook URL or token never reaches the client.
var safePhrases = []string{
	"required",
	"invalid",
	"not found",
	"already exists",
	"must be",
	"cannot be",
	"too long",
	"too short",
}

// SafeError writes an error response, passing validation-style messages
// through verbatim and collapsing everything else to "internal server
// error". 5xx codes are always collapsed regardless of message shape.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	isSafe := false
	if code < 500 {
		lower := strings.ToLower(msg)
		for _, phrase := range safePhrases {
			if strings.Contains(lower, phrase) {
				isSafe = true
				break
			}
		}
	}

	if isSafe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.Any("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}
