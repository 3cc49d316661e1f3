package notification

import (
	"net/http"

	"tripnotify/internal/handler/http/respond"
	"tripnotify/internal/usecase/dispatch"
)

// QueueHandler exposes a snapshot of the retry queue's pending operations.
type QueueHandler struct{ Svc dispatch.Service }

func (h QueueHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.Svc.QueueSnapshot()

	ops := make([]QueuedOperationDTO, 0, len(snapshot))
	for _, op := range snapshot {
		ops = append(ops, QueuedOperationDTO{
			ID:          op.ID,
			Attempts:    op.Attempts,
			MaxAttempts: op.MaxAttempts,
			LastError:   op.LastError,
			ScheduledAt: op.ScheduledAt,
			Channel:     string(op.Record.Channel),
		})
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"depth":      len(ops),
		"operations": ops,
	})
}
