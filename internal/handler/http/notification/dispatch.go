package notification

import (
	"encoding/json"
	"errors"
	"net/http"

	"tripnotify/internal/domain/entity"
	"tripnotify/internal/handler/http/respond"
	"tripnotify/internal/usecase/dispatch"
)

// DispatchHandler accepts an event plus recipients and creates the delivery
// records, enqueueing eligible deliveries.
type DispatchHandler struct{ Svc dispatch.Service }

func (h DispatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Event      EventDTO       `json:"event"`
		Channels   []string       `json:"channels,omitempty"`
		Recipients []RecipientDTO `json:"recipients"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Event.Type == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("event.type is required"))
		return
	}
	if len(req.Recipients) == 0 {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("at least one recipient is required"))
		return
	}

	channels := make([]entity.DeliveryChannel, 0, len(req.Channels))
	for _, c := range req.Channels {
		ch := entity.DeliveryChannel(c)
		if !ch.IsValid() {
			respond.SafeError(w, http.StatusBadRequest,
				errors.New("invalid channel: must be push, email, or sms"))
			return
		}
		channels = append(channels, ch)
	}

	recipients := make([]dispatch.Recipient, 0, len(req.Recipients))
	for _, rec := range req.Recipients {
		if rec.UserID == "" {
			respond.SafeError(w, http.StatusBadRequest,
				errors.New("recipient user_id is required"))
			return
		}
		recipients = append(recipients, rec.toUsecase())
	}

	records, err := h.Svc.Dispatch(r.Context(), dispatch.Request{
		Event:      req.Event.toEntity(),
		Channels:   channels,
		Recipients: recipients,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, dispatch.ErrShutdown) {
			status = http.StatusServiceUnavailable
		}
		respond.SafeError(w, status, err)
		return
	}

	dtos := make([]DeliveryRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, recordDTO(rec))
	}
	respond.JSON(w, http.StatusAccepted, map[string]any{
		"records": dtos,
	})
}
