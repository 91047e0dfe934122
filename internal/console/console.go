package console

import (
	"sync"

	"github.com/edosstack/edos-console/internal/models"
)

// Options sizes a Console.
type Options struct {
	Capacity        int
	RowHeight       float64
	ViewportHeight  float64
	BottomTolerance float64
}

// Console owns the buffered event state and its derived view. All mutations
// funnel through one mutex and every mutation explicitly recomputes the
// filtered view, so readers (windowed rendering, status) always see a
// consistent pairing of buffer, filter parameters, and view.
type Console struct {
	mu      sync.RWMutex
	buffer  *Buffer
	params  FilterParams
	tracker *Tracker
	view    []models.Event

	rowHeight float64
}

// New constructs a Console.
func New(opts Options) *Console {
	if opts.RowHeight <= 0 {
		opts.RowHeight = 28
	}
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = 560
	}
	c := &Console{
		buffer:    NewBuffer(opts.Capacity),
		params:    NewFilterParams(),
		tracker:   NewTracker(opts.BottomTolerance),
		rowHeight: opts.RowHeight,
	}
	c.tracker.SetViewport(0, opts.ViewportHeight, 0)
	return c
}

// Ingest appends one normalized event and refreshes the derived view. When
// the event passes the active filter it also advances the scroll tracker.
func (c *Console) Ingest(event models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	admitted := c.params.Matches(event)
	c.buffer.Append(event)
	c.recompute()
	if admitted {
		c.tracker.OnAppend(1)
	}
}

// Clear empties the buffer and resets derived state. Idempotent.
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	viewport := c.tracker.viewport
	c.buffer.Clear()
	c.tracker.Reset()
	c.tracker.SetViewport(0, viewport, 0)
	c.recompute()
}

// Acknowledge marks the event with the given id. Missing ids (including
// already-evicted ones) are a silent no-op.
func (c *Console) Acknowledge(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	found := c.buffer.Acknowledge(id)
	if found {
		c.recompute()
	}
	return found
}

// SetSeverityEnabled toggles one severity in the active filter set.
func (c *Console) SetSeverityEnabled(sev models.Severity, enabled bool) {
	if !sev.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Active[sev] = enabled
	c.recompute()
}

// SetQuery replaces the free-text query.
func (c *Console) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Query = query
	c.recompute()
}

// Params returns a copy of the current filter parameters.
func (c *Console) Params() FilterParams {
	c.mu.RLock()
	defer c.mu.RUnlock()
	active := make(map[models.Severity]bool, len(c.params.Active))
	for sev, on := range c.params.Active {
		active[sev] = on
	}
	return FilterParams{Active: active, Query: c.params.Query}
}

// ViewLen returns the length of the filtered view.
func (c *Console) ViewLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.view)
}

// Window returns up to count rows of the filtered view starting at start.
// Lookup cost is proportional to the window, never the history.
func (c *Console) Window(start, count int) []models.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if start < 0 {
		start = 0
	}
	if count < 0 {
		count = 0
	}
	if start >= len(c.view) {
		return nil
	}
	end := start + count
	if end > len(c.view) {
		end = len(c.view)
	}
	out := make([]models.Event, end-start)
	copy(out, c.view[start:end])
	return out
}

// Lookup finds a buffered event by id, newest first.
func (c *Console) Lookup(id string) (models.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := c.buffer.Len() - 1; i >= 0; i-- {
		if event, ok := c.buffer.Get(i); ok && event.ID == id {
			return event, true
		}
	}
	return models.Event{}, false
}

// SetViewport records the consumer's scroll geometry.
func (c *Console) SetViewport(offset, viewportHeight float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker.SetViewport(offset, viewportHeight, float64(len(c.view))*c.rowHeight)
}

// ScrollToBottom snaps to the newest row and clears the unseen counter.
func (c *Console) ScrollToBottom() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker.ScrollToBottom()
}

// AtBottom reports whether the viewport currently shows the newest row.
func (c *Console) AtBottom() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tracker.AtBottom()
}

// Unseen returns the count of events admitted while not at-bottom.
func (c *Console) Unseen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tracker.Unseen()
}

// BufferLen returns the retained event count.
func (c *Console) BufferLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buffer.Len()
}

// Evicted returns the eviction count since the last clear.
func (c *Console) Evicted() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buffer.Evicted()
}

// SeverityCounts breaks the retained events down by severity.
func (c *Console) SeverityCounts() map[models.Severity]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	counts := make(map[models.Severity]int, len(models.Severities))
	for i := 0; i < c.buffer.Len(); i++ {
		if event, ok := c.buffer.Get(i); ok {
			counts[event.Severity]++
		}
	}
	return counts
}

// recompute rebuilds the derived view from a buffer snapshot. Callers hold
// the write lock.
func (c *Console) recompute() {
	c.view = DeriveView(c.buffer.Snapshot(), c.params)
	c.tracker.ExtendContent(float64(len(c.view)) * c.rowHeight)
}
