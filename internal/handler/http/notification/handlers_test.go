package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripnotify/internal/infra/render"
	"tripnotify/internal/usecase/dispatch"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	svc := dispatch.NewService(nil, dispatch.Providers{}, dispatch.Options{})
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })

	mux := http.NewServeMux()
	Register(mux, svc, render.NewEmailRenderer(nil), nil)
	return mux
}

func dispatchBody() string {
	return `{
		"event": {
			"type": "broadcast_posted",
			"actor_name": "Alice",
			"trip": {"name": "Tahoe Trip"}
		},
		"recipients": [
			{"user_id": "user-1", "push_enabled": true, "email_enabled": true, "category_enabled": true}
		]
	}`
}

func TestDispatchHandlerCreatesRecords(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/notifications/dispatch", strings.NewReader(dispatchBody()))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Records []DeliveryRecordDTO `json:"records"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Records, 3)

	byChannel := make(map[string]DeliveryRecordDTO)
	for _, r := range resp.Records {
		assert.Equal(t, "user-1", r.RecipientUserID)
		assert.NotEmpty(t, r.NotificationID)
		byChannel[r.Channel] = r
	}
	assert.Equal(t, "queued", byChannel["push"].Status)
	assert.Equal(t, "queued", byChannel["email"].Status)
	// SMS disabled for this recipient.
	assert.Equal(t, "skipped", byChannel["sms"].Status)
	assert.Equal(t, "sms_disabled", byChannel["sms"].Reason)
}

func TestDispatchHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{`},
		{name: "missing event type", body: `{"event":{},"recipients":[{"user_id":"u1"}]}`},
		{name: "no recipients", body: `{"event":{"type":"broadcast_posted"},"recipients":[]}`},
		{name: "missing user id", body: `{"event":{"type":"broadcast_posted"},"recipients":[{}]}`},
		{name: "invalid channel", body: `{"event":{"type":"broadcast_posted"},"channels":["fax"],"recipients":[{"user_id":"u1"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(t)
			req := httptest.NewRequest(http.MethodPost, "/notifications/dispatch", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPreviewHandlerReturnsAllChannels(t *testing.T) {
	mux := newTestMux(t)

	body := `{"event":{"type":"payment_request","actor_name":"Alice","trip":{"name":"Tahoe Trip"},"extra":{"amount":"$40.00","trip_id":"trip-1"}}}`
	req := httptest.NewRequest(http.MethodPost, "/notifications/preview", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Contains(t, resp, "push")
	assert.Contains(t, resp, "email")
	assert.Contains(t, resp, "sms")
	assert.Contains(t, resp, "email_html")
	assert.Contains(t, resp, "email_plaintext")

	sms := resp["sms"].(map[string]any)
	assert.LessOrEqual(t, sms["length"].(float64), sms["limit"].(float64))

	html := resp["email_html"].(string)
	assert.Contains(t, html, "Tahoe Trip")
}

func TestPreviewHandlerRejectsMissingType(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/notifications/preview", strings.NewReader(`{"event":{}}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueueHandlerReturnsSnapshot(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/notifications/queue", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Depth      int                  `json:"depth"`
		Operations []QueuedOperationDTO `json:"operations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, resp.Depth, len(resp.Operations))
}

func TestRecipientDTOQuietHoursTimezone(t *testing.T) {
	dto := RecipientDTO{
		UserID: "user-1",
		QuietHours: &QuietHoursDTO{
			StartHour: 22,
			EndHour:   7,
			Timezone:  "America/Los_Angeles",
		},
	}

	recipient := dto.toUsecase()
	require.NotNil(t, recipient.QuietHours)
	if recipient.QuietHours.Location == nil {
		t.Skip("tzdata unavailable")
	}
	assert.Equal(t, "America/Los_Angeles", recipient.QuietHours.Location.String())
}
