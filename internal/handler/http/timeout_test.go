package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimeoutPassesFastHandler(t *testing.T) {
	handler := Timeout(time.Second)(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/notifications/history", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestTimeoutAnswers504ForSlowHandler(t *testing.T) {
	release := make(chan struct{})
	handler := Timeout(50*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte("late"))
	}))
	defer close(release)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/notifications/dispatch", nil))

	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rr.Code)
	}
	if got := rr.Body.String(); got != `{"error":"request timeout"}` {
		t.Errorf("body = %s", got)
	}
}

func TestTimeoutCancelsHandlerContext(t *testing.T) {
	cancelled := make(chan struct{})
	handler := Timeout(50*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(cancelled)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/notifications/dispatch", nil))

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("handler context was not cancelled")
	}
}

func TestTimeoutLateWriteRejected(t *testing.T) {
	wrote := make(chan error, 1)
	handler := Timeout(50*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(20 * time.Millisecond)
		_, err := w.Write([]byte("too late"))
		wrote <- err
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/notifications/dispatch", nil))

	select {
	case err := <-wrote:
		if err != http.ErrHandlerTimeout {
			t.Errorf("late Write error = %v, want http.ErrHandlerTimeout", err)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never attempted its late write")
	}

	if rr.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rr.Code)
	}
}
