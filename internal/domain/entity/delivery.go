package entity

import "time"

// DeliveryStatus is the lifecycle state of one delivery attempt record.
//
// StatusQueued is the only non-terminal state. StatusSkipped is terminal
// except when caused by quiet-hours deferral, which keeps the record queued
// until re-evaluation.
type DeliveryStatus string

const (
	StatusQueued  DeliveryStatus = "queued"
	StatusSent    DeliveryStatus = "sent"
	StatusFailed  DeliveryStatus = "failed"
	StatusSkipped DeliveryStatus = "skipped"
)

// IsTerminal reports whether the status ends the record's lifecycle from the
// engine's perspective.
func (s DeliveryStatus) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed || s == StatusSkipped
}

// DeliveryRecord tracks one notification × recipient × channel delivery.
// Records are created in bulk (one per requested channel) when a notification
// is dispatched; the eligibility evaluator sets the initial status and the
// application of a ProviderAttemptResult advances it. The engine never deletes
// records — ownership passes to the caller for persistence.
type DeliveryRecord struct {
	NotificationID    string
	RecipientUserID   string
	Channel           DeliveryChannel
	Status            DeliveryStatus
	Reason            string
	ProviderMessageID string
}

// ProviderAttemptResult is what the external delivery function reports back
// for a single attempt. Err is classified by the caller as retryable or not;
// the engine itself never interprets provider error contents.
type ProviderAttemptResult struct {
	Success           bool
	ProviderMessageID string
	Err               error
}

// Apply advances the record's status with the outcome of a provider attempt.
// A failed attempt does not force StatusFailed; the retry scheduler decides
// when failure becomes permanent and calls MarkFailed.
func (r *DeliveryRecord) Apply(res ProviderAttemptResult) {
	if res.Success {
		r.Status = StatusSent
		r.ProviderMessageID = res.ProviderMessageID
		r.Reason = ""
		return
	}
	if res.Err != nil {
		r.Reason = res.Err.Error()
	}
}

// MarkFailed transitions the record to the terminal failed state.
func (r *DeliveryRecord) MarkFailed(reason string) {
	r.Status = StatusFailed
	if reason != "" {
		r.Reason = reason
	}
}

// NewDeliveryRecords creates one queued record per requested channel for a
// recipient. A missing notification ID or recipient ID is a programming
// error, reported as ErrInvalidRecipient; an unknown channel as
// ErrInvalidChannel.
func NewDeliveryRecords(notificationID, recipientUserID string, channels []DeliveryChannel) ([]DeliveryRecord, error) {
	if notificationID == "" || recipientUserID == "" {
		return nil, ErrInvalidRecipient
	}

	records := make([]DeliveryRecord, 0, len(channels))
	for _, ch := range channels {
		if !ch.IsValid() {
			return nil, ErrInvalidChannel
		}
		records = append(records, DeliveryRecord{
			NotificationID:  notificationID,
			RecipientUserID: recipientUserID,
			Channel:         ch,
			Status:          StatusQueued,
		})
	}
	return records, nil
}

// QueuedOperation is one unit of work in the retry scheduler's queue.
// Attempts increments monotonically; the operation is removed from the queue
// on success or after exhausting MaxAttempts.
type QueuedOperation struct {
	// ID uniquely identifies the operation, typically
	// "<notificationID>:<recipientUserID>:<channel>".
	ID string

	Attempts    int
	MaxAttempts int
	LastError   string

	// ScheduledAt is the earliest time the next attempt may run. Quiet-hours
	// deferrals stamp the computed window end here.
	ScheduledAt time.Time

	// Record is the delivery record this operation advances.
	Record DeliveryRecord

	// Content is the channel content handed to the provider on each attempt.
	Content Content
}
