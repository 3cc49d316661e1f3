// Package postgres provides PostgreSQL implementations of repository
// interfaces.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"tripnotify/internal/domain/entity"
	"tripnotify/internal/repository"
)

// DeliveryRepo implements the DeliveryHistoryRepository interface using PostgreSQL.
type DeliveryRepo struct{ db *sql.DB }

// NewDeliveryRepo creates a new PostgreSQL-backed delivery history repository.
func NewDeliveryRepo(db *sql.DB) repository.DeliveryHistoryRepository {
	return &DeliveryRepo{db: db}
}

// scanRecord scans a delivery record row.
func scanRecord(rows *sql.Rows) (entity.DeliveryRecord, error) {
	var rec entity.DeliveryRecord
	if err := rows.Scan(
		&rec.NotificationID, &rec.RecipientUserID, &rec.Channel,
		&rec.Status, &rec.Reason, &rec.ProviderMessageID,
	); err != nil {
		return entity.DeliveryRecord{}, err
	}
	return rec, nil
}

// Upsert stores the record, replacing any existing row for the same
// (notification_id, recipient_user_id, channel) key. updated_at is bumped on
// every write so ListRecent reflects the latest state transitions.
func (repo *DeliveryRepo) Upsert(ctx context.Context, record entity.DeliveryRecord) error {
	const query = `
INSERT INTO delivery_records
    (notification_id, recipient_user_id, channel, status, reason, provider_message_id, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (notification_id, recipient_user_id, channel)
DO UPDATE SET
    status = EXCLUDED.status,
    reason = EXCLUDED.reason,
    provider_message_id = EXCLUDED.provider_message_id,
    updated_at = now()
`
	if _, err := repo.db.ExecContext(ctx, query,
		record.NotificationID, record.RecipientUserID, string(record.Channel),
		string(record.Status), record.Reason, record.ProviderMessageID,
	); err != nil {
		return fmt.Errorf("upsert delivery record: %w", err)
	}
	return nil
}

// ListByNotification returns all records for one notification ordered by
// recipient and channel.
func (repo *DeliveryRepo) ListByNotification(ctx context.Context, notificationID string) ([]entity.DeliveryRecord, error) {
	const query = `
SELECT notification_id, recipient_user_id, channel, status, reason, provider_message_id
FROM delivery_records
WHERE notification_id = $1
ORDER BY recipient_user_id, channel
`
	rows, err := repo.db.QueryContext(ctx, query, notificationID)
	if err != nil {
		return nil, fmt.Errorf("list delivery records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []entity.DeliveryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListRecent returns the most recently updated records, newest first.
func (repo *DeliveryRepo) ListRecent(ctx context.Context, limit, offset int) ([]entity.DeliveryRecord, error) {
	const query = `
SELECT notification_id, recipient_user_id, channel, status, reason, provider_message_id
FROM delivery_records
ORDER BY updated_at DESC
LIMIT $1 OFFSET $2
`
	rows, err := repo.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recent delivery records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []entity.DeliveryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountRecent returns the total number of stored records.
func (repo *DeliveryRepo) CountRecent(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM delivery_records`

	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count delivery records: %w", err)
	}
	return count, nil
}
