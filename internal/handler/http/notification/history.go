package notification

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tripnotify/internal/common/pagination"
	"tripnotify/internal/handler/http/requestid"
	"tripnotify/internal/handler/http/respond"
	"tripnotify/internal/repository"
)

// DeliveriesHandler returns the stored delivery records for one notification.
type DeliveriesHandler struct {
	History repository.DeliveryHistoryRepository
}

func (h DeliveriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	notificationID := r.PathValue("id")
	if notificationID == "" {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("notification id is required"))
		return
	}

	records, err := h.History.ListByNotification(r.Context(), notificationID)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DeliveryRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, recordDTO(rec))
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"notification_id": notificationID,
		"records":         dtos,
	})
}

// HistoryHandler lists recently updated delivery records, newest first, with
// offset pagination.
type HistoryHandler struct {
	History repository.DeliveryHistoryRepository
	Config  pagination.Config
}

func (h HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := requestid.FromContext(r.Context())
	logger := slog.Default()

	params, err := pagination.ParseQueryParams(r, h.Config)
	if err != nil {
		pagination.RecordError("validation")
		pagination.RecordRequest(http.StatusBadRequest, params.Page)
		pagination.LogError(logger, requestID, params, err, "validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	pagination.LogRequest(logger, requestID, "", params)

	strategy := pagination.OffsetStrategy{}
	query := strategy.CalculateQuery(params)

	total, err := h.History.CountRecent(r.Context())
	if err != nil {
		pagination.RecordError("database")
		pagination.RecordRequest(http.StatusInternalServerError, params.Page)
		pagination.LogError(logger, requestID, params, err, "database")
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	pagination.UpdateTotalCount(total)

	records, err := h.History.ListRecent(r.Context(), query.Limit, query.Offset)
	if err != nil {
		pagination.RecordError("database")
		pagination.RecordRequest(http.StatusInternalServerError, params.Page)
		pagination.LogError(logger, requestID, params, err, "database")
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DeliveryRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, recordDTO(rec))
	}

	metadata := strategy.BuildMetadata(params, total)
	pagination.RecordRequest(http.StatusOK, params.Page)
	pagination.RecordDuration("handler", time.Since(start).Seconds())
	pagination.LogResponse(logger, requestID, params, len(dtos), time.Since(start), http.StatusOK)

	respond.JSON(w, http.StatusOK, pagination.NewResponse(dtos, metadata))
}
