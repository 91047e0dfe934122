package utils

import (
	"sync"
	"time"
)

// RateTracker stores recent arrival instants and derives an events-per-second
// figure over a sliding window.
type RateTracker struct {
	mu      sync.Mutex
	window  time.Duration
	arrived []time.Time
	now     func() time.Time
}

// NewRateTracker creates a tracker over the given window.
func NewRateTracker(window time.Duration) *RateTracker {
	if window <= 0 {
		window = 30 * time.Second
	}
	return &RateTracker{window: window, now: time.Now}
}

// Observe records one arrival.
func (r *RateTracker) Observe() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.arrived = append(r.arrived, now)
	r.trim(now)
}

// PerSecond returns the arrival rate over the window. Zero if no samples.
func (r *RateTracker) PerSecond() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.trim(now)
	if len(r.arrived) == 0 {
		return 0
	}
	span := now.Sub(r.arrived[0])
	if span < time.Second {
		span = time.Second
	}
	return float64(len(r.arrived)) / span.Seconds()
}

// Count returns the number of arrivals still inside the window.
func (r *RateTracker) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trim(r.now())
	return len(r.arrived)
}

func (r *RateTracker) trim(now time.Time) {
	cutoff := now.Add(-r.window)
	drop := 0
	for drop < len(r.arrived) && r.arrived[drop].Before(cutoff) {
		drop++
	}
	if drop > 0 {
		r.arrived = append(r.arrived[:0], r.arrived[drop:]...)
	}
}
