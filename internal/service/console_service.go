package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/edosstack/edos-console/internal/console"
	"github.com/edosstack/edos-console/internal/metrics"
	"github.com/edosstack/edos-console/internal/models"
	"github.com/edosstack/edos-console/internal/source"
	"github.com/edosstack/edos-console/internal/utils"
)

// ConsoleService glues the event console to its stream source and publishes
// operational state. It is the single entry point the API layer talks to.
type ConsoleService struct {
	logger  *slog.Logger
	console *console.Console
	manager *source.Manager
	rate    *utils.RateTracker

	mu          sync.Mutex
	lastEvicted uint64
}

// NewConsoleService wires a console to a source manager. The service itself
// is the manager's sink, so every delivered event flows through Ingest.
func NewConsoleService(logger *slog.Logger, consoleOpts console.Options, sourceOpts source.Options) *ConsoleService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ConsoleService{
		logger:  logger,
		console: console.New(consoleOpts),
		rate:    utils.NewRateTracker(30 * time.Second),
	}
	s.manager = source.NewManager(logger, s, sourceOpts)
	return s
}

// Start activates the configured stream source.
func (s *ConsoleService) Start() {
	s.manager.Start()
}

// Close tears down the stream source.
func (s *ConsoleService) Close() {
	s.manager.Close()
}

// Ingest receives one normalized event from the active source.
func (s *ConsoleService) Ingest(event models.Event) {
	s.console.Ingest(event)
	s.rate.Observe()
	metrics.ObserveIngest(event.Severity)
	s.publishGauges()
}

// Window returns up to count filtered rows starting at start, along with the
// total filtered length so callers can page.
func (s *ConsoleService) Window(start, count int) ([]models.Event, int) {
	return s.console.Window(start, count), s.console.ViewLen()
}

// Lookup finds a buffered event by id.
func (s *ConsoleService) Lookup(id string) (models.Event, bool) {
	return s.console.Lookup(id)
}

// Acknowledge marks one event. Unknown ids report false without error.
func (s *ConsoleService) Acknowledge(id string) bool {
	acked := s.console.Acknowledge(id)
	if !acked {
		s.logger.Debug("acknowledge miss", slog.String("event_id", id))
	}
	return acked
}

// Clear empties the buffer and derived state.
func (s *ConsoleService) Clear() {
	s.console.Clear()
	s.mu.Lock()
	s.lastEvicted = 0
	s.mu.Unlock()
	s.publishGauges()
}

// Pause suppresses delivery at the source.
func (s *ConsoleService) Pause() { s.manager.Pause() }

// Resume re-enables delivery.
func (s *ConsoleService) Resume() { s.manager.Resume() }

// SetEndpoint switches the stream source. Empty selects simulation.
func (s *ConsoleService) SetEndpoint(endpoint string) {
	s.logger.Info("switching stream source", slog.String("endpoint", endpoint))
	s.manager.SetEndpoint(endpoint)
}

// Reconnect re-applies the current endpoint.
func (s *ConsoleService) Reconnect() {
	s.manager.Reconnect()
}

// SetSeverityEnabled toggles one severity in the view filter.
func (s *ConsoleService) SetSeverityEnabled(sev models.Severity, enabled bool) {
	s.console.SetSeverityEnabled(sev, enabled)
	s.publishGauges()
}

// SetQuery replaces the free-text filter query.
func (s *ConsoleService) SetQuery(query string) {
	s.console.SetQuery(query)
	s.publishGauges()
}

// Params returns the current filter parameters.
func (s *ConsoleService) Params() console.FilterParams {
	return s.console.Params()
}

// SetViewport records the consumer's scroll geometry.
func (s *ConsoleService) SetViewport(offset, viewportHeight float64) {
	s.console.SetViewport(offset, viewportHeight)
	s.publishGauges()
}

// ScrollToBottom snaps the viewport to the newest row.
func (s *ConsoleService) ScrollToBottom() {
	s.console.ScrollToBottom()
	s.publishGauges()
}

// Status is the operational snapshot served to consumers.
type Status struct {
	Mode           string                  `json:"mode"`
	Endpoint       string                  `json:"endpoint,omitempty"`
	ConnState      string                  `json:"connection_state"`
	Paused         bool                    `json:"paused"`
	BufferLen      int                     `json:"buffer_len"`
	ViewLen        int                     `json:"view_len"`
	Evicted        uint64                  `json:"evicted"`
	Unseen         int                     `json:"unseen"`
	AtBottom       bool                    `json:"at_bottom"`
	EventsPerSec   float64                 `json:"events_per_sec"`
	SeverityCounts map[models.Severity]int `json:"severity_counts"`
}

// Status assembles the current operational snapshot.
func (s *ConsoleService) Status() Status {
	mode := "live"
	if s.manager.Simulated() {
		mode = "simulation"
	}
	return Status{
		Mode:           mode,
		Endpoint:       s.manager.Endpoint(),
		ConnState:      string(s.manager.State()),
		Paused:         s.manager.Paused(),
		BufferLen:      s.console.BufferLen(),
		ViewLen:        s.console.ViewLen(),
		Evicted:        s.console.Evicted(),
		Unseen:         s.console.Unseen(),
		AtBottom:       s.console.AtBottom(),
		EventsPerSec:   s.rate.PerSecond(),
		SeverityCounts: s.console.SeverityCounts(),
	}
}

// publishGauges pushes buffer state to Prometheus. Eviction totals are
// monotonic counters, so only the delta since the last publish is added.
func (s *ConsoleService) publishGauges() {
	metrics.SetBufferState(s.console.BufferLen(), s.console.Unseen())

	evicted := s.console.Evicted()
	s.mu.Lock()
	defer s.mu.Unlock()
	if evicted > s.lastEvicted {
		metrics.ObserveEvictions(evicted - s.lastEvicted)
		s.lastEvicted = evicted
	}
}
