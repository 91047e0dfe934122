package console

// Tracker decides whether the viewport shows the newest row and counts
// events that arrive while it does not. Geometry is expressed in the
// renderer's units (pixels for a DOM viewport, rows for a terminal); the
// tracker only compares extents.
type Tracker struct {
	viewport  float64
	content   float64
	offset    float64
	tolerance float64
	atBottom  bool
	unseen    int
}

// NewTracker creates a tracker with the given at-bottom tolerance. The
// tolerance absorbs sub-row rounding; exact-equality comparison would flap.
func NewTracker(tolerance float64) *Tracker {
	if tolerance < 0 {
		tolerance = 0
	}
	return &Tracker{tolerance: tolerance, atBottom: true}
}

// SetViewport records the current scroll geometry and re-evaluates the
// at-bottom state. Reaching the bottom resets the unseen counter.
func (t *Tracker) SetViewport(offset, viewport, content float64) {
	t.offset = offset
	t.viewport = viewport
	t.content = content

	distance := content - viewport - offset
	if distance < 0 {
		distance = 0
	}
	t.atBottom = distance <= t.tolerance
	if t.atBottom {
		t.unseen = 0
	}
}

// OnAppend accounts for newly admitted events. While at-bottom the viewport
// auto-advances and unseen stays at zero; otherwise the counter grows.
func (t *Tracker) OnAppend(n int) {
	if n <= 0 {
		return
	}
	if t.atBottom {
		return
	}
	t.unseen += n
}

// ScrollToBottom advances the viewport to the tail and clears the counter.
func (t *Tracker) ScrollToBottom() {
	t.offset = t.content - t.viewport
	if t.offset < 0 {
		t.offset = 0
	}
	t.atBottom = true
	t.unseen = 0
}

// ExtendContent grows the tracked content extent, keeping the offset pinned
// to the tail while at-bottom.
func (t *Tracker) ExtendContent(content float64) {
	t.content = content
	if t.atBottom {
		t.offset = t.content - t.viewport
		if t.offset < 0 {
			t.offset = 0
		}
	}
}

// AtBottom reports whether the newest row is within tolerance of the view.
func (t *Tracker) AtBottom() bool { return t.atBottom }

// Unseen returns the number of events admitted while not at-bottom.
func (t *Tracker) Unseen() int { return t.unseen }

// Reset clears the counter and snaps back to the tail. Used by clear().
func (t *Tracker) Reset() {
	t.unseen = 0
	t.atBottom = true
	t.offset = 0
	t.content = 0
}
