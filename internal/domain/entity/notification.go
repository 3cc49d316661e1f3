// Package entity defines the core domain entities for the notification delivery
// engine: notification events, delivery channels, channel content, and delivery
// records. Entities carry no behavior beyond validation and are safe to pass by
// value across use case boundaries.
package entity

// NotificationType identifies the kind of trip event that triggered a
// notification. The set is closed: content templates are keyed by this type and
// unknown values fall back to a generic template rather than failing.
type NotificationType string

const (
	TypeBroadcastPosted      NotificationType = "broadcast_posted"
	TypeCalendarEventAdded   NotificationType = "calendar_event_added"
	TypeCalendarEventUpdated NotificationType = "calendar_event_updated"
	TypeCalendarBulkImport   NotificationType = "calendar_bulk_import"
	TypePaymentRequest       NotificationType = "payment_request"
	TypePaymentSettled       NotificationType = "payment_settled"
	TypeTaskAssigned         NotificationType = "task_assigned"
	TypeTaskCompleted        NotificationType = "task_completed"
	TypePollCreated          NotificationType = "poll_created"
	TypeJoinRequest          NotificationType = "join_request"
	TypeJoinApproved         NotificationType = "join_approved"
	TypeBasecampUpdated      NotificationType = "basecamp_updated"
	TypeTripInvite           NotificationType = "trip_invite"
	TypeTripReminder         NotificationType = "trip_reminder"
	TypeRSVPUpdate           NotificationType = "rsvp_update"
)

// AllNotificationTypes lists every known notification type in a stable order.
// Used by tests and by the preview endpoint to enumerate templates.
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeBroadcastPosted,
		TypeCalendarEventAdded,
		TypeCalendarEventUpdated,
		TypeCalendarBulkImport,
		TypePaymentRequest,
		TypePaymentSettled,
		TypeTaskAssigned,
		TypeTaskCompleted,
		TypePollCreated,
		TypeJoinRequest,
		TypeJoinApproved,
		TypeBasecampUpdated,
		TypeTripInvite,
		TypeTripReminder,
		TypeRSVPUpdate,
	}
}

// IsValid reports whether t is one of the known notification types.
func (t NotificationType) IsValid() bool {
	for _, known := range AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// DeliveryChannel identifies how a notification reaches a recipient.
type DeliveryChannel string

const (
	ChannelPush  DeliveryChannel = "push"
	ChannelEmail DeliveryChannel = "email"
	ChannelSMS   DeliveryChannel = "sms"
)

// AllDeliveryChannels lists the supported delivery channels in a stable order.
func AllDeliveryChannels() []DeliveryChannel {
	return []DeliveryChannel{ChannelPush, ChannelEmail, ChannelSMS}
}

// IsValid reports whether c is a supported delivery channel.
func (c DeliveryChannel) IsValid() bool {
	switch c {
	case ChannelPush, ChannelEmail, ChannelSMS:
		return true
	}
	return false
}

// TripContext carries the optional trip facts interpolated into notification
// copy. It has no identity: the engine treats it as an immutable value and
// every field may be empty.
type TripContext struct {
	// TripName is the trip's display name. Empty means "your trip" in copy.
	TripName string

	// Locations is the ordered list of trip locations. A single-location trip
	// has a one-element slice.
	Locations []string

	// StartDate and EndDate are ISO dates ("2006-01-02") or RFC 3339
	// timestamps. Unparsable values degrade to empty date copy; they never
	// cause a build failure.
	StartDate string
	EndDate   string
}

// NotificationEvent is the channel-agnostic input to the content builder.
// It is constructed once per notification occurrence and never mutated.
type NotificationEvent struct {
	Type    NotificationType
	Channel DeliveryChannel
	Trip    TripContext

	// ActorName is the display name of the user who caused the event.
	// Empty defaults to "Someone" in copy.
	ActorName string

	// Count carries a quantity for bulk-style events (calendar imports,
	// RSVP tallies). Zero means the template's singular form is used.
	Count int

	// Extra holds scalar facts that individual templates may consume,
	// e.g. "trip_id" for CTA URL construction or "amount" for payments.
	Extra map[string]string
}
