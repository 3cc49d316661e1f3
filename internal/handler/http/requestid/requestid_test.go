package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := FromContext(ctx); got != "req-123" {
		t.Errorf("FromContext() = %q, want req-123", got)
	}
}

func TestFromContextEmpty(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("FromContext() on empty context = %q, want empty", got)
	}
}

func TestMiddlewareGeneratesUUID(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/notifications/dispatch", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("generated request ID %q is not a UUID: %v", seen, err)
	}
	if rr.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header %q != context ID %q", rr.Header().Get(RequestIDHeader), seen)
	}
}

func TestMiddlewareHonorsCallerID(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	r := httptest.NewRequest("POST", "/notifications/dispatch", nil)
	r.Header.Set(RequestIDHeader, "client-retry-7")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, r)

	if seen != "client-retry-7" {
		t.Errorf("context ID = %q, want caller-supplied client-retry-7", seen)
	}
	if rr.Header().Get(RequestIDHeader) != "client-retry-7" {
		t.Errorf("response header = %q, want client-retry-7", rr.Header().Get(RequestIDHeader))
	}
}
