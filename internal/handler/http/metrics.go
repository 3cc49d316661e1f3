package http

import (
	"net/http"
	"strconv"
	"time"

	"tripnotify/internal/handler/http/pathutil"
	"tripnotify/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// httpRequestsInFlight tracks the current number of HTTP requests being
// processed. The request counters and histograms themselves live in
// internal/observability/metrics so the worker can share them.
var httpRequestsInFlight = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being served",
	},
)

// metricsResponseWriter wraps http.ResponseWriter to record status code and
// response size.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// MetricsMiddleware records HTTP request metrics including duration, size,
// and status codes. Paths are normalized to prevent label cardinality
// explosion from ID-containing paths.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		normalizedPath := pathutil.NormalizePath(r.URL.Path)

		rw := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		start := time.Now()
		next.ServeHTTP(rw, r)
		duration := time.Since(start)

		status := strconv.Itoa(rw.statusCode)
		metrics.RecordHTTPRequest(r.Method, normalizedPath, status, duration,
			int(r.ContentLength), rw.size)
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
