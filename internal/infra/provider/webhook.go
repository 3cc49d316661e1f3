package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"tripnotify/internal/domain/entity"
	"tripnotify/internal/resilience/circuitbreaker"
	"tripnotify/internal/resilience/retry"
)

// WebhookConfig contains configuration for a webhook delivery gateway.
type WebhookConfig struct {
	// URL is the gateway endpoint deliveries are POSTed to
	URL string

	// Timeout is the HTTP request timeout for gateway calls
	Timeout time.Duration

	// RequestsPerSecond is the sustained rate limit toward the gateway
	RequestsPerSecond float64

	// Burst is the rate limiter burst capacity
	Burst int

	// Breaker configures the circuit breaker around gateway calls
	Breaker circuitbreaker.Config
}

// DefaultWebhookConfig returns a webhook configuration with conservative
// rate limits for the given channel.
func DefaultWebhookConfig(url string, channel entity.DeliveryChannel) WebhookConfig {
	cfg := WebhookConfig{
		URL:               url,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
		Burst:             20,
		Breaker:           circuitbreaker.DefaultConfig(string(channel) + "-provider"),
	}
	switch channel {
	case entity.ChannelPush:
		cfg.Breaker = circuitbreaker.PushProviderConfig()
	case entity.ChannelEmail:
		cfg.Breaker = circuitbreaker.EmailProviderConfig()
	case entity.ChannelSMS:
		cfg.Breaker = circuitbreaker.SMSProviderConfig()
		cfg.RequestsPerSecond = 2
		cfg.Burst = 5
	}
	return cfg
}

// Webhook delivers messages by POSTing a JSON envelope to a gateway endpoint.
// Calls are rate limited and wrapped in a circuit breaker; failures are
// classified with the retry package so the scheduler can decide whether to
// reattempt.
type Webhook struct {
	config      WebhookConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	breaker     *gobreaker.CircuitBreaker
}

// NewWebhook creates a Webhook provider from the given configuration.
func NewWebhook(config WebhookConfig) *Webhook {
	return &Webhook{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(config.RequestsPerSecond, config.Burst),
		breaker:     circuitbreaker.New(config.Breaker),
	}
}

// webhookEnvelope is the JSON payload POSTed to the gateway.
type webhookEnvelope struct {
	RequestID       string               `json:"request_id"`
	NotificationID  string               `json:"notification_id"`
	RecipientUserID string               `json:"recipient_user_id"`
	Channel         string               `json:"channel"`
	Push            *entity.PushContent  `json:"push,omitempty"`
	Email           *entity.EmailContent `json:"email,omitempty"`
	SMS             *entity.SmsContent   `json:"sms,omitempty"`
}

// webhookAccepted is the gateway's success response.
type webhookAccepted struct {
	MessageID string `json:"message_id"`
}

// Send POSTs the delivery envelope to the gateway.
//
// It performs the following steps:
//  1. Generate a request_id for tracing
//  2. Wait on the rate limiter
//  3. Execute the POST through the circuit breaker
//  4. Classify the response status into retry error types
//
// An open circuit breaker is reported as a transient error so deferred
// deliveries are retried once the breaker recovers.
func (w *Webhook) Send(ctx context.Context, delivery Delivery) (string, error) {
	requestID := uuid.New().String()

	if err := w.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	result, err := w.breaker.Execute(func() (any, error) {
		return w.post(ctx, requestID, delivery)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.Warn("webhook gateway circuit open, deferring delivery",
				slog.String("request_id", requestID),
				slog.String("notification_id", delivery.NotificationID),
				slog.String("channel", string(delivery.Channel)))
			return "", retry.Transient("gateway circuit open: %v", err)
		}
		return "", err
	}

	messageID := result.(string)
	slog.Info("webhook delivery accepted",
		slog.String("request_id", requestID),
		slog.String("notification_id", delivery.NotificationID),
		slog.String("recipient_user_id", delivery.RecipientUserID),
		slog.String("channel", string(delivery.Channel)),
		slog.String("provider_message_id", messageID))
	return messageID, nil
}

// post executes a single POST to the gateway and classifies the outcome.
func (w *Webhook) post(ctx context.Context, requestID string, delivery Delivery) (string, error) {
	envelope := webhookEnvelope{
		RequestID:       requestID,
		NotificationID:  delivery.NotificationID,
		RecipientUserID: delivery.RecipientUserID,
		Channel:         string(delivery.Channel),
		Push:            delivery.Content.Push,
		Email:           delivery.Content.Email,
		SMS:             delivery.Content.SMS,
	}

	jsonData, err := json.Marshal(envelope)
	if err != nil {
		return "", retry.Permanent("marshal webhook envelope: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(jsonData))
	if err != nil {
		return "", retry.Permanent("create http request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		// Network-level failures are classified by retry.IsRetryable.
		return "", fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var accepted webhookAccepted
		if err := json.Unmarshal(body, &accepted); err == nil && accepted.MessageID != "" {
			return accepted.MessageID, nil
		}
		// Gateways that return no body still count as accepted.
		return requestID, nil
	}

	return "", &retry.HTTPError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("gateway rejected delivery: %s", string(body)),
	}
}
