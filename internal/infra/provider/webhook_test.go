package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tripnotify/internal/domain/entity"
	"tripnotify/internal/resilience/circuitbreaker"
	"tripnotify/internal/resilience/retry"
)

func testDelivery() Delivery {
	return Delivery{
		NotificationID:  "n-1",
		RecipientUserID: "user-1",
		Channel:         entity.ChannelPush,
		Content: entity.Content{
			Channel: entity.ChannelPush,
			Push:    &entity.PushContent{Title: "New post in Tahoe Trip", Body: "Alice posted an update."},
		},
	}
}

func testConfig(url string) WebhookConfig {
	cfg := DefaultWebhookConfig(url, entity.ChannelPush)
	cfg.Timeout = 2 * time.Second
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 1000
	return cfg
}

func TestWebhookSendSuccess(t *testing.T) {
	var got webhookEnvelope
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("unmarshal envelope: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(webhookAccepted{MessageID: "msg-42"})
	}))
	defer server.Close()

	webhook := NewWebhook(testConfig(server.URL))

	messageID, err := webhook.Send(context.Background(), testDelivery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messageID != "msg-42" {
		t.Errorf("expected message ID msg-42, got %q", messageID)
	}
	if got.Channel != "push" {
		t.Errorf("expected channel push, got %q", got.Channel)
	}
	if got.Push == nil || got.Push.Title != "New post in Tahoe Trip" {
		t.Errorf("push content not carried in envelope: %+v", got.Push)
	}
	if got.Email != nil || got.SMS != nil {
		t.Error("envelope should only carry the delivery's channel content")
	}
	if got.NotificationID != "n-1" || got.RecipientUserID != "user-1" {
		t.Errorf("identifiers not carried: %+v", got)
	}
}

func TestWebhookSendSuccessWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	webhook := NewWebhook(testConfig(server.URL))

	messageID, err := webhook.Send(context.Background(), testDelivery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messageID == "" {
		t.Error("expected fallback message ID when gateway returns no body")
	}
}

func TestWebhookSendServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	webhook := NewWebhook(testConfig(server.URL))

	_, err := webhook.Send(context.Background(), testDelivery())
	if err == nil {
		t.Fatal("expected error")
	}

	var httpErr *retry.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", httpErr.StatusCode)
	}
	if !retry.IsRetryable(err) {
		t.Error("5xx gateway error should be retryable")
	}
}

func TestWebhookSendClientErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unknown recipient", http.StatusBadRequest)
	}))
	defer server.Close()

	webhook := NewWebhook(testConfig(server.URL))

	_, err := webhook.Send(context.Background(), testDelivery())
	if err == nil {
		t.Fatal("expected error")
	}
	if retry.IsRetryable(err) {
		t.Error("4xx gateway error should not be retryable")
	}
}

func TestWebhookSendRateLimitedIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	webhook := NewWebhook(testConfig(server.URL))

	_, err := webhook.Send(context.Background(), testDelivery())
	if err == nil {
		t.Fatal("expected error")
	}
	if !retry.IsRetryable(err) {
		t.Error("429 gateway error should be retryable")
	}
}

func TestWebhookOpenCircuitIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Breaker = circuitbreaker.Config{
		Name:             "test-provider",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
	webhook := NewWebhook(cfg)

	// Trip the breaker with consecutive failures.
	for range 3 {
		_, _ = webhook.Send(context.Background(), testDelivery())
	}

	_, err := webhook.Send(context.Background(), testDelivery())
	if err == nil {
		t.Fatal("expected error from open circuit")
	}
	var transient *retry.TransientError
	if !errors.As(err, &transient) {
		t.Fatalf("expected TransientError from open circuit, got %T: %v", err, err)
	}
	if !retry.IsRetryable(err) {
		t.Error("open circuit must be retryable so deliveries resume after recovery")
	}
}

func TestWebhookContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	webhook := NewWebhook(testConfig(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := webhook.Send(ctx, testDelivery())
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestNoopSend(t *testing.T) {
	noop := NewNoop()

	messageID, err := noop.Send(context.Background(), testDelivery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messageID == "" {
		t.Error("expected synthetic message ID")
	}
}
