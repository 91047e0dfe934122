package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/edosstack/edos-console/internal/models"
	"github.com/edosstack/edos-console/internal/service"
	"github.com/edosstack/edos-console/internal/session"
)

// Handler serves the console API.
type Handler struct {
	svc     *service.ConsoleService
	checker session.Checker
	logger  *slog.Logger
}

// NewHandler builds the API handler.
func NewHandler(svc *service.ConsoleService, checker session.Checker, logger *slog.Logger) *Handler {
	if checker == nil {
		checker = session.AllowAll{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, checker: checker, logger: logger}
}

// Routes assembles the HTTP mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("GET /api/v1/console/window", h.handleWindow)
	mux.HandleFunc("GET /api/v1/console/status", h.handleStatus)
	mux.HandleFunc("GET /api/v1/console/events/{id}", h.handleEvent)
	mux.HandleFunc("GET /api/v1/console/events/{id}/copy", h.handleCopy)
	mux.HandleFunc("POST /api/v1/console/ack", h.handleAck)
	mux.HandleFunc("POST /api/v1/console/pause", h.handlePause)
	mux.HandleFunc("POST /api/v1/console/resume", h.handleResume)
	mux.HandleFunc("POST /api/v1/console/clear", h.handleClear)
	mux.HandleFunc("PUT /api/v1/console/endpoint", h.handleEndpoint)
	mux.HandleFunc("POST /api/v1/console/reconnect", h.handleReconnect)
	mux.HandleFunc("PUT /api/v1/console/filter", h.handleFilter)
	mux.HandleFunc("PUT /api/v1/console/query", h.handleQuery)
	mux.HandleFunc("PUT /api/v1/console/viewport", h.handleViewport)
	mux.HandleFunc("POST /api/v1/console/scroll-to-bottom", h.handleScrollToBottom)

	return h.logRequests(h.authenticate(mux))
}

type eventDTO struct {
	ID           string  `json:"id"`
	Timestamp    string  `json:"timestamp"`
	Text         string  `json:"text"`
	Confidence   float64 `json:"confidence"`
	Severity     string  `json:"severity"`
	Acknowledged bool    `json:"acknowledged"`
}

func toDTO(event models.Event) eventDTO {
	return eventDTO{
		ID:           event.ID,
		Timestamp:    event.Timestamp.UTC().Format(time.RFC3339Nano),
		Text:         event.Text,
		Confidence:   event.Confidence,
		Severity:     string(event.Severity),
		Acknowledged: event.Acknowledged,
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleWindow(w http.ResponseWriter, r *http.Request) {
	start, err := queryInt(r, "start", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := queryInt(r, "count", 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, total := h.svc.Window(start, count)
	rows := make([]eventDTO, 0, len(events))
	for _, event := range events {
		rows = append(rows, toDTO(event))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": rows,
		"total":  total,
		"start":  start,
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	event, ok := h.svc.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, toDTO(event))
}

// handleCopy renders one event as clipboard-ready content, either a single
// formatted line or the JSON record.
func (h *Handler) handleCopy(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	event, ok := h.svc.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "text"
	}
	var content string
	switch format {
	case "text":
		content = fmt.Sprintf("%s [%s] %s (confidence %.2f)",
			event.Timestamp.UTC().Format(time.RFC3339),
			strings.ToUpper(string(event.Severity)),
			event.Text,
			event.Confidence,
		)
	case "json":
		raw, err := json.Marshal(toDTO(event))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "encode event")
			return
		}
		content = string(raw)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"format": format, "content": content})
}

func (h *Handler) handleAck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": h.svc.Acknowledge(req.ID)})
}

func (h *Handler) handlePause(w http.ResponseWriter, _ *http.Request) {
	h.svc.Pause()
	writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

func (h *Handler) handleResume(w http.ResponseWriter, _ *http.Request) {
	h.svc.Resume()
	writeJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

func (h *Handler) handleClear(w http.ResponseWriter, _ *http.Request) {
	h.svc.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) handleEndpoint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.svc.SetEndpoint(req.Endpoint)
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *Handler) handleReconnect(w http.ResponseWriter, _ *http.Request) {
	h.svc.Reconnect()
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *Handler) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Severity string `json:"severity"`
		Enabled  *bool  `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "severity and enabled are required")
		return
	}
	sev, ok := models.ParseSeverity(req.Severity)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown severity %q", req.Severity))
		return
	}
	h.svc.SetSeverityEnabled(sev, *req.Enabled)
	writeJSON(w, http.StatusOK, filterResponse(h.svc))
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.svc.SetQuery(req.Query)
	writeJSON(w, http.StatusOK, filterResponse(h.svc))
}

func (h *Handler) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Offset         float64 `json:"offset"`
		ViewportHeight float64 `json:"viewport_height"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.svc.SetViewport(req.Offset, req.ViewportHeight)
	status := h.svc.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"at_bottom": status.AtBottom,
		"unseen":    status.Unseen,
	})
}

func (h *Handler) handleScrollToBottom(w http.ResponseWriter, _ *http.Request) {
	h.svc.ScrollToBottom()
	status := h.svc.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"at_bottom": status.AtBottom,
		"unseen":    status.Unseen,
	})
}

func filterResponse(svc *service.ConsoleService) map[string]any {
	params := svc.Params()
	active := make(map[string]bool, len(params.Active))
	for sev, on := range params.Active {
		active[string(sev)] = on
	}
	_, total := svc.Window(0, 0)
	return map[string]any{
		"active":   active,
		"query":    params.Query,
		"view_len": total,
	}
}

// authenticate enforces the bearer token on API routes. The health endpoint
// stays open for probes.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !h.checker.Authenticated(token) {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(started)),
		)
	})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
