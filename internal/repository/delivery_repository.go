package repository

import (
	"context"

	"tripnotify/internal/domain/entity"
)

// DeliveryHistoryRepository persists delivery records for audit and
// reconciliation. The dispatch engine owns record lifecycle in memory;
// the repository stores the trail.
type DeliveryHistoryRepository interface {
	// Upsert stores the record, replacing any existing row for the same
	// (notification_id, recipient_user_id, channel) key.
	Upsert(ctx context.Context, record entity.DeliveryRecord) error

	// ListByNotification returns all records for one notification ordered by
	// recipient and channel.
	ListByNotification(ctx context.Context, notificationID string) ([]entity.DeliveryRecord, error)

	// ListRecent returns the most recently updated records, newest first,
	// bounded by limit with offset for pagination.
	ListRecent(ctx context.Context, limit, offset int) ([]entity.DeliveryRecord, error)

	// CountRecent returns the total number of stored records, for pagination
	// metadata.
	CountRecent(ctx context.Context) (int64, error)
}
