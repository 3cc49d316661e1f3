package notification

import (
	"encoding/json"
	"errors"
	"net/http"

	"tripnotify/internal/domain/entity"
	"tripnotify/internal/handler/http/respond"
	"tripnotify/internal/infra/render"
	"tripnotify/internal/usecase/dispatch"
)

// PreviewHandler builds the content an event would produce on every channel
// without dispatching anything. Useful for template review and support
// tooling.
type PreviewHandler struct {
	Svc      dispatch.Service
	Renderer *render.EmailRenderer
}

func (h PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Event EventDTO `json:"event"`
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

	all, err := h.Svc.Preview(req.Event.toEntity())
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	resp := map[string]any{
		"push": all.Push,
		"email": map[string]any{
			"subject":      all.Email.Subject,
			"preview_text": all.Email.PreviewText,
			"heading":      all.Email.Heading,
			"body_text":    all.Email.BodyText,
			"cta_label":    all.Email.CTALabel,
			"cta_url":      all.Email.CTAURL,
			"footer_text":  all.Email.FooterText,
		},
		"sms": map[string]any{
			"message": all.SMS.Message,
			"length":  len([]rune(all.SMS.Message)),
			"limit":   entity.SMSMaxLength,
		},
	}

	if h.Renderer != nil {
		html, err := h.Renderer.RenderHTML(all.Email)
		if err != nil {
			respond.SafeError(w, http.StatusInternalServerError, err)
			return
		}
		resp["email_html"] = html
		resp["email_plaintext"] = h.Renderer.RenderPlaintext(all.Email)
	}

	respond.JSON(w, http.StatusOK, resp)
}
