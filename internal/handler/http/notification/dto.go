// Package notification provides HTTP handlers for the dispatch API:
// dispatching an event to recipients, previewing generated content, and
// inspecting the retry queue.
package notification

import (
	"time"

	"tripnotify/internal/domain/entity"
	"tripnotify/internal/usecase/dispatch"
	"tripnotify/internal/usecase/eligibility"
)

// TripDTO is the JSON structure for the trip facts interpolated into copy.
type TripDTO struct {
	Name      string   `json:"name"`
	Locations []string `json:"locations,omitempty"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
}

// EventDTO is the JSON structure for one notification event.
type EventDTO struct {
	Type      string            `json:"type"`
	ActorName string            `json:"actor_name,omitempty"`
	Count     int               `json:"count,omitempty"`
	Trip      TripDTO           `json:"trip"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// toEntity converts the DTO to the domain event.
func (e EventDTO) toEntity() entity.NotificationEvent {
	return entity.NotificationEvent{
		Type:      entity.NotificationType(e.Type),
		ActorName: e.ActorName,
		Count:     e.Count,
		Trip: entity.TripContext{
			TripName:  e.Trip.Name,
			Locations: e.Trip.Locations,
			StartDate: e.Trip.StartDate,
			EndDate:   e.Trip.EndDate,
		},
		Extra: e.Extra,
	}
}

// QuietHoursDTO is a recipient's local quiet-hours window.
type QuietHoursDTO struct {
	StartHour   int    `json:"start_hour"`
	StartMinute int    `json:"start_minute"`
	EndHour     int    `json:"end_hour"`
	EndMinute   int    `json:"end_minute"`
	Timezone    string `json:"timezone,omitempty"`
}

// RecipientDTO carries one recipient's identity and eligibility facts.
type RecipientDTO struct {
	UserID          string         `json:"user_id"`
	PushEnabled     bool           `json:"push_enabled"`
	EmailEnabled    bool           `json:"email_enabled"`
	SMSEnabled      bool           `json:"sms_enabled"`
	CategoryEnabled bool           `json:"category_enabled"`
	SMSEntitled     bool           `json:"sms_entitled"`
	SMSPhone        string         `json:"sms_phone,omitempty"`
	QuietHours      *QuietHoursDTO `json:"quiet_hours,omitempty"`
}

// toUsecase converts the DTO to the dispatch recipient. An unknown timezone
// degrades to UTC rather than failing the whole dispatch.
func (r RecipientDTO) toUsecase() dispatch.Recipient {
	recipient := dispatch.Recipient{
		UserID:          r.UserID,
		PushEnabled:     r.PushEnabled,
		EmailEnabled:    r.EmailEnabled,
		SMSEnabled:      r.SMSEnabled,
		CategoryEnabled: r.CategoryEnabled,
		SMSEntitled:     r.SMSEntitled,
		SMSPhone:        r.SMSPhone,
	}
	if r.QuietHours != nil {
		window := eligibility.QuietWindow{
			StartHour:   r.QuietHours.StartHour,
			StartMinute: r.QuietHours.StartMinute,
			EndHour:     r.QuietHours.EndHour,
			EndMinute:   r.QuietHours.EndMinute,
		}
		if r.QuietHours.Timezone != "" {
			if loc, err := time.LoadLocation(r.QuietHours.Timezone); err == nil {
				window.Location = loc
			}
		}
		recipient.QuietHours = &window
	}
	return recipient
}

// DeliveryRecordDTO is the JSON structure for one created delivery record.
type DeliveryRecordDTO struct {
	NotificationID    string `json:"notification_id"`
	RecipientUserID   string `json:"recipient_user_id"`
	Channel           string `json:"channel"`
	Status            string `json:"status"`
	Reason            string `json:"reason,omitempty"`
	ProviderMessageID string `json:"provider_message_id,omitempty"`
}

// recordDTO converts a domain delivery record to its DTO.
func recordDTO(r entity.DeliveryRecord) DeliveryRecordDTO {
	return DeliveryRecordDTO{
		NotificationID:    r.NotificationID,
		RecipientUserID:   r.RecipientUserID,
		Channel:           string(r.Channel),
		Status:            string(r.Status),
		Reason:            r.Reason,
		ProviderMessageID: r.ProviderMessageID,
	}
}

// QueuedOperationDTO is the JSON structure for one pending retry operation.
type QueuedOperationDTO struct {
	ID          string    `json:"id"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	LastError   string    `json:"last_error,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Channel     string    `json:"channel"`
}
