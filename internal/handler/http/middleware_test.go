package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}

func TestLoggingWritesCompletionLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logging(logger)(okHandler())
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/notifications/dispatch?dry_run=1", nil))

	line := buf.String()
	for _, want := range []string{
		`"msg":"request completed"`,
		`"method":"POST"`,
		`"path":"/notifications/dispatch"`,
		`"query":"dry_run=1"`,
		`"status":200`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestRecoverTurnsPanicInto500(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("template exploded")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/notifications/preview", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Error("panic was not logged")
	}
	if strings.Contains(rr.Body.String(), "template exploded") {
		t.Error("panic detail leaked into the response body")
	}
}

func TestLimitRequestBody(t *testing.T) {
	handler := LimitRequestBody(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		if _, err := r.Body.Read(buf); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	body := strings.NewReader(strings.Repeat("x", 64))
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/notifications/dispatch", body))

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rr.Code)
	}
}

func TestRateLimiterEnforcesWindow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	handler := rl.Limit(okHandler())

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/notifications/dispatch", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/notifications/dispatch", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("over-limit status = %d, want 429", rr.Code)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := rl.Limit(okHandler())

	first := httptest.NewRequest("POST", "/notifications/dispatch", nil)
	first.RemoteAddr = "10.0.0.1:1000"
	handler.ServeHTTP(httptest.NewRecorder(), first)

	rr := httptest.NewRecorder()
	second := httptest.NewRequest("POST", "/notifications/dispatch", nil)
	second.RemoteAddr = "10.0.0.2:1000"
	handler.ServeHTTP(rr, second)

	if rr.Code != http.StatusOK {
		t.Errorf("other client's status = %d, want 200", rr.Code)
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr only", "192.168.1.9:4242", nil, "192.168.1.9"},
		{"x-forwarded-for single", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "203.0.113.7"},
		{"x-forwarded-for chain uses first", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
		{"garbage forwarded-for falls through", "192.168.1.9:4242", map[string]string{"X-Forwarded-For": "not-an-ip"}, "192.168.1.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/health", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := extractIP(r); got != tt.want {
				t.Errorf("extractIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func BenchmarkRateLimiterAllow(b *testing.B) {
	rl := NewRateLimiter(1000000, time.Minute)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rl.allow(fmt.Sprintf("10.0.%d.%d", i%256, i%64))
	}
}
