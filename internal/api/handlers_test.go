package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edosstack/edos-console/internal/console"
	"github.com/edosstack/edos-console/internal/models"
	"github.com/edosstack/edos-console/internal/service"
	"github.com/edosstack/edos-console/internal/session"
	"github.com/edosstack/edos-console/internal/source"
	"github.com/edosstack/edos-console/internal/utils"
)

func newTestHandler(token string) (*service.ConsoleService, http.Handler) {
	svc := service.NewConsoleService(
		utils.NewLogger("error", false),
		console.Options{Capacity: 100},
		source.Options{TickInterval: time.Hour},
	)
	handler := NewHandler(svc, session.FromToken(token), utils.NewLogger("error", false))
	return svc, handler.Routes()
}

func seed(svc *service.ConsoleService, n int) {
	for i := 0; i < n; i++ {
		svc.Ingest(models.Event{
			ID:        fmt.Sprintf("e-%d", i),
			Timestamp: time.Now(),
			Text:      fmt.Sprintf("event number %d", i),
			Severity:  models.SeverityOK,
		})
	}
}

func do(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthOpenWithoutAuth(t *testing.T) {
	_, handler := newTestHandler("secret")
	rec := do(t, handler, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz should not require auth, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	_, handler := newTestHandler("secret")

	if rec := do(t, handler, http.MethodGet, "/api/v1/console/status", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token should be rejected, got %d", rec.Code)
	}
	if rec := do(t, handler, http.MethodGet, "/api/v1/console/status", "wrong", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token should be rejected, got %d", rec.Code)
	}
	if rec := do(t, handler, http.MethodGet, "/api/v1/console/status", "secret", ""); rec.Code != http.StatusOK {
		t.Fatalf("valid token should pass, got %d", rec.Code)
	}
}

func TestWindowEndpoint(t *testing.T) {
	svc, handler := newTestHandler("")
	seed(svc, 10)

	rec := do(t, handler, http.MethodGet, "/api/v1/console/window?start=2&count=3", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Events []struct {
			ID string `json:"id"`
		} `json:"events"`
		Total int `json:"total"`
	}
	decode(t, rec, &resp)
	if resp.Total != 10 || len(resp.Events) != 3 || resp.Events[0].ID != "e-2" {
		t.Fatalf("unexpected window response: %+v", resp)
	}

	if rec := do(t, handler, http.MethodGet, "/api/v1/console/window?start=abc", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-integer start should 400, got %d", rec.Code)
	}
}

func TestEventDetail(t *testing.T) {
	svc, handler := newTestHandler("")
	seed(svc, 3)

	rec := do(t, handler, http.MethodGet, "/api/v1/console/events/e-1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var event struct {
		ID       string `json:"id"`
		Severity string `json:"severity"`
	}
	decode(t, rec, &event)
	if event.ID != "e-1" || event.Severity != "ok" {
		t.Fatalf("unexpected event: %+v", event)
	}

	if rec := do(t, handler, http.MethodGet, "/api/v1/console/events/missing", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing event should 404, got %d", rec.Code)
	}
}

func TestCopyEndpoint(t *testing.T) {
	svc, handler := newTestHandler("")
	svc.Ingest(models.Event{
		ID:         "c-1",
		Timestamp:  time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		Text:       "intrusion detected",
		Severity:   models.SeverityCrit,
		Confidence: 0.9,
	})

	rec := do(t, handler, http.MethodGet, "/api/v1/console/events/c-1/copy", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Format  string `json:"format"`
		Content string `json:"content"`
	}
	decode(t, rec, &resp)
	want := "2026-08-23T10:00:00Z [CRIT] intrusion detected (confidence 0.90)"
	if resp.Format != "text" || resp.Content != want {
		t.Fatalf("unexpected copy content: %+v", resp)
	}

	rec = do(t, handler, http.MethodGet, "/api/v1/console/events/c-1/copy?format=json", "", "")
	decode(t, rec, &resp)
	var event struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &event); err != nil || event.ID != "c-1" {
		t.Fatalf("json copy content not a record: %q err=%v", resp.Content, err)
	}

	if rec := do(t, handler, http.MethodGet, "/api/v1/console/events/c-1/copy?format=xml", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown format should 400, got %d", rec.Code)
	}
}

func TestAckEndpoint(t *testing.T) {
	svc, handler := newTestHandler("")
	seed(svc, 1)

	rec := do(t, handler, http.MethodPost, "/api/v1/console/ack", "", `{"id":"e-0"}`)
	var resp struct {
		Acknowledged bool `json:"acknowledged"`
	}
	decode(t, rec, &resp)
	if !resp.Acknowledged {
		t.Fatalf("known id should acknowledge")
	}

	rec = do(t, handler, http.MethodPost, "/api/v1/console/ack", "", `{"id":"ghost"}`)
	decode(t, rec, &resp)
	if resp.Acknowledged {
		t.Fatalf("unknown id must report false")
	}

	if rec := do(t, handler, http.MethodPost, "/api/v1/console/ack", "", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty id should 400, got %d", rec.Code)
	}
}

func TestPauseResumeClear(t *testing.T) {
	svc, handler := newTestHandler("")
	defer svc.Close()
	seed(svc, 5)

	do(t, handler, http.MethodPost, "/api/v1/console/pause", "", "")
	var status service.Status
	rec := do(t, handler, http.MethodGet, "/api/v1/console/status", "", "")
	decode(t, rec, &status)
	if !status.Paused {
		t.Fatalf("pause not reflected in status")
	}

	do(t, handler, http.MethodPost, "/api/v1/console/resume", "", "")
	rec = do(t, handler, http.MethodGet, "/api/v1/console/status", "", "")
	decode(t, rec, &status)
	if status.Paused {
		t.Fatalf("resume not reflected in status")
	}

	do(t, handler, http.MethodPost, "/api/v1/console/clear", "", "")
	rec = do(t, handler, http.MethodGet, "/api/v1/console/status", "", "")
	decode(t, rec, &status)
	if status.BufferLen != 0 {
		t.Fatalf("clear not applied: %+v", status)
	}
}

func TestFilterEndpoints(t *testing.T) {
	svc, handler := newTestHandler("")
	svc.Ingest(models.Event{ID: "c-1", Timestamp: time.Now(), Text: "intrusion", Severity: models.SeverityCrit})
	svc.Ingest(models.Event{ID: "o-1", Timestamp: time.Now(), Text: "routine", Severity: models.SeverityOK})

	rec := do(t, handler, http.MethodPut, "/api/v1/console/filter", "", `{"severity":"ok","enabled":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Active  map[string]bool `json:"active"`
		ViewLen int             `json:"view_len"`
	}
	decode(t, rec, &resp)
	if resp.Active["ok"] || resp.ViewLen != 1 {
		t.Fatalf("severity toggle not applied: %+v", resp)
	}

	if rec := do(t, handler, http.MethodPut, "/api/v1/console/filter", "", `{"severity":"bogus","enabled":true}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown severity should 400, got %d", rec.Code)
	}

	rec = do(t, handler, http.MethodPut, "/api/v1/console/query", "", `{"query":"INTRUSION"}`)
	decode(t, rec, &resp)
	if resp.ViewLen != 1 {
		t.Fatalf("query filter not applied: %+v", resp)
	}
}

func TestViewportAndScrollToBottom(t *testing.T) {
	svc, handler := newTestHandler("")
	seed(svc, 1)

	rec := do(t, handler, http.MethodPut, "/api/v1/console/viewport", "", `{"offset":0,"viewport_height":10}`)
	var resp struct {
		AtBottom bool `json:"at_bottom"`
		Unseen   int  `json:"unseen"`
	}
	decode(t, rec, &resp)
	if resp.AtBottom {
		t.Fatalf("viewport far from tail should not be at bottom")
	}

	seed(svc, 4)
	rec = do(t, handler, http.MethodPost, "/api/v1/console/scroll-to-bottom", "", "")
	decode(t, rec, &resp)
	if !resp.AtBottom || resp.Unseen != 0 {
		t.Fatalf("scroll-to-bottom not applied: %+v", resp)
	}
}

func TestEndpointSwitch(t *testing.T) {
	svc, handler := newTestHandler("")
	defer svc.Close()

	rec := do(t, handler, http.MethodPut, "/api/v1/console/endpoint", "", `{"endpoint":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var status service.Status
	decode(t, rec, &status)
	if status.Mode != "simulation" {
		t.Fatalf("empty endpoint should select simulation, got %q", status.Mode)
	}
}
