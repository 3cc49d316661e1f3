// Package provider abstracts the downstream delivery services the engine
// hands finished messages to. It defines the Provider interface which allows
// different delivery mechanisms (webhook gateways, vendor SDKs, a no-op for
// disabled channels) to be used interchangeably through dependency injection.
//
// Providers report failures using the error types in internal/resilience/retry
// so the retry scheduler can distinguish transient failures from permanent
// ones.
package provider

import (
	"context"

	"tripnotify/internal/domain/entity"
)

// Delivery is one message handed to a provider: the recipient, the channel,
// and the rendered content for that channel.
type Delivery struct {
	// NotificationID identifies the notification this delivery belongs to
	NotificationID string

	// RecipientUserID identifies the recipient
	RecipientUserID string

	// Channel selects which content variant the provider consumes
	Channel entity.DeliveryChannel

	// Content is the rendered content for Channel
	Content entity.Content
}

// Provider is an interface for handing a delivery to a downstream service.
// Implementations should handle rate limiting internally; retrying is the
// scheduler's job, not the provider's.
type Provider interface {
	// Send hands one delivery to the downstream service.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - delivery: The message to deliver
	//
	// Returns:
	//   - string: Provider-assigned message ID on success, empty on failure
	//   - error: Non-nil if the attempt failed. Use retry.Transient,
	//     retry.Permanent, or retry.HTTPError so the scheduler can classify
	//     the failure.
	Send(ctx context.Context, delivery Delivery) (string, error)
}
