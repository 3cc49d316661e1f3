package notification

import (
	"net/http"

	"tripnotify/internal/common/pagination"
	"tripnotify/internal/infra/render"
	"tripnotify/internal/repository"
	"tripnotify/internal/usecase/dispatch"
)

// Register registers the notification endpoints with the given mux. The
// history routes are registered only when a history repository is configured.
func Register(mux *http.ServeMux, svc dispatch.Service, renderer *render.EmailRenderer, history repository.DeliveryHistoryRepository) {
	mux.Handle("POST   /notifications/dispatch", DispatchHandler{Svc: svc})
	mux.Handle("POST   /notifications/preview", PreviewHandler{Svc: svc, Renderer: renderer})
	mux.Handle("GET    /notifications/queue", QueueHandler{Svc: svc})

	if history != nil {
		mux.Handle("GET    /notifications/history", HistoryHandler{
			History: history,
			Config:  pagination.LoadFromEnv(),
		})
		mux.Handle("GET    /notifications/{id}/deliveries", DeliveriesHandler{History: history})
	}
}
