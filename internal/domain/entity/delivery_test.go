package entity

import (
	"errors"
	"testing"
)

func TestNewDeliveryRecords(t *testing.T) {
	t.Run("creates one queued record per channel", func(t *testing.T) {
		records, err := NewDeliveryRecords("n-1", "user-1", AllDeliveryChannels())
		if err != nil {
			t.Fatalf("NewDeliveryRecords() error = %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("len(records) = %d, want 3", len(records))
		}
		for _, rec := range records {
			if rec.Status != StatusQueued {
				t.Errorf("record %s status = %v, want %v", rec.Channel, rec.Status, StatusQueued)
			}
			if rec.NotificationID != "n-1" || rec.RecipientUserID != "user-1" {
				t.Errorf("record %s has wrong identifiers: %+v", rec.Channel, rec)
			}
		}
	})

	t.Run("missing recipient is a programming error", func(t *testing.T) {
		_, err := NewDeliveryRecords("n-1", "", []DeliveryChannel{ChannelPush})
		if !errors.Is(err, ErrInvalidRecipient) {
			t.Errorf("error = %v, want ErrInvalidRecipient", err)
		}
	})

	t.Run("missing notification id is a programming error", func(t *testing.T) {
		_, err := NewDeliveryRecords("", "user-1", []DeliveryChannel{ChannelPush})
		if !errors.Is(err, ErrInvalidRecipient) {
			t.Errorf("error = %v, want ErrInvalidRecipient", err)
		}
	})

	t.Run("unknown channel is rejected", func(t *testing.T) {
		_, err := NewDeliveryRecords("n-1", "user-1", []DeliveryChannel{"fax"})
		if !errors.Is(err, ErrInvalidChannel) {
			t.Errorf("error = %v, want ErrInvalidChannel", err)
		}
	})
}

func TestDeliveryRecordApply(t *testing.T) {
	rec := DeliveryRecord{
		NotificationID:  "n-1",
		RecipientUserID: "user-1",
		Channel:         ChannelPush,
		Status:          StatusQueued,
	}

	rec.Apply(ProviderAttemptResult{Success: true, ProviderMessageID: "msg-42"})
	if rec.Status != StatusSent {
		t.Errorf("status = %v, want %v", rec.Status, StatusSent)
	}
	if rec.ProviderMessageID != "msg-42" {
		t.Errorf("provider message id = %q, want %q", rec.ProviderMessageID, "msg-42")
	}
}

func TestDeliveryRecordApplyFailureStaysQueued(t *testing.T) {
	rec := DeliveryRecord{Status: StatusQueued}
	rec.Apply(ProviderAttemptResult{Success: false, Err: errors.New("provider 503")})

	// A single failed attempt must not terminate the record; the retry
	// scheduler decides when failure becomes permanent.
	if rec.Status != StatusQueued {
		t.Errorf("status = %v, want %v", rec.Status, StatusQueued)
	}
	if rec.Reason != "provider 503" {
		t.Errorf("reason = %q, want %q", rec.Reason, "provider 503")
	}

	rec.MarkFailed("max attempts exceeded")
	if rec.Status != StatusFailed {
		t.Errorf("status after MarkFailed = %v, want %v", rec.Status, StatusFailed)
	}
}

func TestDeliveryStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status DeliveryStatus
		want   bool
	}{
		{StatusQueued, false},
		{StatusSent, true},
		{StatusFailed, true},
		{StatusSkipped, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.want)
			}
		})
	}
}
