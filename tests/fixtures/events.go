// Package fixtures provides reusable test data generators for integration tests.
// This package eliminates test data duplication and ensures consistent test content
// across different test suites.
package fixtures

import (
	"fmt"

	"tripnotify/internal/domain/entity"
	"tripnotify/internal/usecase/dispatch"
)

// EventOption is a functional option for customizing test events.
type EventOption func(*entity.NotificationEvent)

// NewTestEvent creates a valid NotificationEvent with sensible defaults.
// Use functional options to customize the event for specific test cases.
//
// Example:
//
//	ev := fixtures.NewTestEvent()
//	ev := fixtures.NewTestEvent(fixtures.WithType(entity.TypePaymentRequest), fixtures.WithActor("Mallory"))
func NewTestEvent(opts ...EventOption) entity.NotificationEvent {
	ev := entity.NotificationEvent{
		Type:      entity.TypeTripInvite,
		Trip:      NewTestTrip(),
		ActorName: "Alice",
		Extra:     map[string]string{"trip_id": "trip-123"},
	}
	for _, opt := range opts {
		opt(&ev)
	}
	return ev
}

// WithType sets the notification type.
func WithType(t entity.NotificationType) EventOption {
	return func(ev *entity.NotificationEvent) {
		ev.Type = t
	}
}

// WithActor sets the acting user's display name.
func WithActor(name string) EventOption {
	return func(ev *entity.NotificationEvent) {
		ev.ActorName = name
	}
}

// WithCount sets the bulk quantity for count-aware templates.
func WithCount(n int) EventOption {
	return func(ev *entity.NotificationEvent) {
		ev.Count = n
	}
}

// WithTrip replaces the trip context.
func WithTrip(trip entity.TripContext) EventOption {
	return func(ev *entity.NotificationEvent) {
		ev.Trip = trip
	}
}

// WithExtra sets a single extra fact on the event.
func WithExtra(key, value string) EventOption {
	return func(ev *entity.NotificationEvent) {
		if ev.Extra == nil {
			ev.Extra = map[string]string{}
		}
		ev.Extra[key] = value
	}
}

// NewTestTrip returns a two-location trip context with fixed dates.
func NewTestTrip() entity.TripContext {
	return entity.TripContext{
		TripName:  "Kyoto Getaway",
		Locations: []string{"Kyoto", "Osaka"},
		StartDate: "2026-10-12",
		EndDate:   "2026-10-18",
	}
}

// RecipientOption is a functional option for customizing test recipients.
type RecipientOption func(*dispatch.Recipient)

// NewTestRecipient creates a fully-enabled recipient with all channels,
// the event category, and SMS entitlement turned on.
//
// Example:
//
//	r := fixtures.NewTestRecipient("user-1")
//	r := fixtures.NewTestRecipient("user-2", fixtures.WithoutSMS())
func NewTestRecipient(userID string, opts ...RecipientOption) dispatch.Recipient {
	r := dispatch.Recipient{
		UserID:          userID,
		PushEnabled:     true,
		EmailEnabled:    true,
		SMSEnabled:      true,
		CategoryEnabled: true,
		SMSEntitled:     true,
		SMSPhone:        "+15550100",
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithoutSMS disables the recipient's SMS channel toggle.
func WithoutSMS() RecipientOption {
	return func(r *dispatch.Recipient) {
		r.SMSEnabled = false
	}
}

// WithoutCategory disables the event category for the recipient.
func WithoutCategory() RecipientOption {
	return func(r *dispatch.Recipient) {
		r.CategoryEnabled = false
	}
}

// WithoutPhone clears the recipient's registered phone number.
func WithoutPhone() RecipientOption {
	return func(r *dispatch.Recipient) {
		r.SMSPhone = ""
	}
}

// NewTestRecipients returns n fully-enabled recipients with sequential IDs.
func NewTestRecipients(n int) []dispatch.Recipient {
	recipients := make([]dispatch.Recipient, 0, n)
	for i := 0; i < n; i++ {
		recipients = append(recipients, NewTestRecipient(fmt.Sprintf("user-%d", i+1)))
	}
	return recipients
}
