package source

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"

	"github.com/edosstack/edos-console/internal/metrics"
	"github.com/edosstack/edos-console/internal/models"
	"github.com/edosstack/edos-console/internal/normalize"
)

// ConnState tracks the live connection lifecycle. Simulation mode has no
// connection; its only states are running and paused.
type ConnState string

const (
	StateIdle         ConnState = "idle"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateDisconnected ConnState = "disconnected"
)

// ConnStates lists every live state, for one-hot gauge publication.
var ConnStates = []string{
	string(StateIdle),
	string(StateConnecting),
	string(StateConnected),
	string(StateDisconnected),
}

// Sink receives normalized events from the active source.
type Sink interface {
	Ingest(models.Event)
}

// Options configures a Manager. DialOpts is exercised by tests to point the
// live source at an in-memory listener.
type Options struct {
	Endpoint     string
	TickInterval time.Duration
	DialTimeout  time.Duration
	DialOpts     []grpc.DialOption
}

// Manager owns exactly one active source at a time. An empty endpoint
// selects the simulator; anything else opens a live feed connection.
// Switching tears the previous source down, and a generation token makes
// sure nothing it had in flight reaches the sink afterwards.
type Manager struct {
	logger *slog.Logger
	sink   Sink

	tickInterval time.Duration
	dialTimeout  time.Duration
	dialOpts     []grpc.DialOption

	mu       sync.Mutex
	endpoint string
	paused   bool
	gen      int
	cancel   context.CancelFunc
	state    ConnState
	wg       sync.WaitGroup
}

// NewManager constructs a Manager. Start must be called to activate the
// configured source.
func NewManager(logger *slog.Logger, sink Sink, opts Options) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 700 * time.Millisecond
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return &Manager{
		logger:       logger,
		sink:         sink,
		tickInterval: opts.TickInterval,
		dialTimeout:  opts.DialTimeout,
		dialOpts:     opts.DialOpts,
		endpoint:     opts.Endpoint,
		state:        StateIdle,
	}
}

// Start activates the configured endpoint.
func (m *Manager) Start() {
	m.SetEndpoint(m.Endpoint())
}

// SetEndpoint switches the active source. The empty string selects
// simulation mode. The previous source is cancelled before the new one
// starts; deliveries it still has in flight are discarded.
func (m *Manager) SetEndpoint(endpoint string) {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.gen++
	gen := m.gen
	m.endpoint = endpoint
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	simulated := endpoint == ""
	if simulated {
		m.state = StateIdle
	} else {
		m.state = StateConnecting
	}
	m.mu.Unlock()

	deliver := m.deliverFunc(gen)

	if simulated {
		sim := &Simulator{
			Interval:   m.tickInterval,
			Normalizer: normalize.New(true),
			Deliver:    deliver,
		}
		m.logger.Info("starting simulated source", slog.Duration("interval", m.tickInterval))
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			sim.Run(ctx)
		}()
		return
	}

	live := &LiveSource{
		Endpoint:    endpoint,
		DialTimeout: m.dialTimeout,
		DialOpts:    m.dialOpts,
		Normalizer:  normalize.New(false),
		Deliver:     deliver,
		SetState:    func(state ConnState) { m.setState(gen, state) },
		Logger:      m.logger,
	}
	m.logger.Info("starting live source", slog.String("endpoint", endpoint))
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := live.Run(ctx); err != nil && ctx.Err() == nil {
			// Connection failures surface as state, never as errors to the
			// ingestion path; retry policy belongs to the caller.
			m.logger.Warn("live source ended", slog.Any("error", err))
		}
	}()
}

// Reconnect re-applies the current endpoint.
func (m *Manager) Reconnect() {
	m.SetEndpoint(m.Endpoint())
}

// Pause suppresses delivery at the source. Ticks and inbound messages keep
// firing but their events are dropped, not queued.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

// Resume re-enables delivery.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
}

// Paused reports whether delivery is currently suppressed.
func (m *Manager) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Endpoint returns the configured endpoint ("" means simulation).
func (m *Manager) Endpoint() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endpoint
}

// Simulated reports whether the simulator is the active source.
func (m *Manager) Simulated() bool {
	return m.Endpoint() == ""
}

// State returns the live connection state. Meaningful only in live mode.
func (m *Manager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close tears down the active source and waits for it to finish.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
	m.mu.Unlock()
	m.wg.Wait()
}

// deliverFunc binds a delivery callback to one source generation. The
// generation check and the sink call happen under the manager lock, so a
// delivery racing a teardown can never land after the switch.
func (m *Manager) deliverFunc(gen int) func(models.Event) bool {
	return func(event models.Event) bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen != gen {
			metrics.ObserveStaleDrop()
			return false
		}
		if m.paused {
			metrics.ObservePausedDrop()
			return false
		}
		m.sink.Ingest(event)
		return true
	}
}

func (m *Manager) setState(gen int, state ConnState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return
	}
	m.state = state
	metrics.SetConnectionState(string(state), ConnStates)
}
