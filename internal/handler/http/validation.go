package http

import (
	"net/http"
)

const (
	maxAuthHeaderBytes = 8192
	maxPathBytes       = 2048
	maxBodyBytes       = 10 << 20
)

func rejectJSON(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

// InputValidation bounds inbound request shapes before routing: 8KB of
// Authorization header, 2KB of path, 10MB of body. A dispatch payload for a
// full trip roster fits comfortably inside these.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > maxAuthHeaderBytes {
				rejectJSON(w, http.StatusBadRequest, "authorization header too large")
				return
			}
			if len(r.URL.Path) > maxPathBytes {
				rejectJSON(w, http.StatusRequestURITooLong, "URI too long")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}
