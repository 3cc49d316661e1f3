package db

import (
	"database/sql"
)

// MigrateUp creates the delivery history schema. Statements are idempotent so
// every binary can run migrations at startup without coordination.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS delivery_records (
    notification_id     TEXT NOT NULL,
    recipient_user_id   TEXT NOT NULL,
    channel             VARCHAR(10) NOT NULL,
    status              VARCHAR(10) NOT NULL,
    reason              TEXT NOT NULL DEFAULT '',
    provider_message_id TEXT NOT NULL DEFAULT '',
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (notification_id, recipient_user_id, channel)
)`); err != nil {
		return err
	}

	indexes := []string{
		// ListRecent orders by updated_at DESC
		`CREATE INDEX IF NOT EXISTS idx_delivery_records_updated_at ON delivery_records(updated_at DESC)`,
		// Per-recipient audit lookups
		`CREATE INDEX IF NOT EXISTS idx_delivery_records_recipient ON delivery_records(recipient_user_id)`,
		// Failure triage dashboards filter on status
		`CREATE INDEX IF NOT EXISTS idx_delivery_records_status ON delivery_records(status)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Channel/status value constraints. PostgreSQL-specific guard syntax, so
	// errors are ignored when the constraint already exists.
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_delivery_channel'
    ) THEN
        ALTER TABLE delivery_records ADD CONSTRAINT chk_delivery_channel
        CHECK (channel IN ('push', 'email', 'sms'));
    END IF;
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_delivery_status'
    ) THEN
        ALTER TABLE delivery_records ADD CONSTRAINT chk_delivery_status
        CHECK (status IN ('queued', 'sent', 'failed', 'skipped'));
    END IF;
END $$;
`)

	return nil
}
