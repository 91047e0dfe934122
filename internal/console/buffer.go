package console

import (
	"sync"

	"github.com/edosstack/edos-console/internal/models"
)

// DefaultCapacity bounds the retained event history.
const DefaultCapacity = 5000

// Buffer is an insertion-ordered, capacity-bounded event store. Appends
// beyond capacity evict the oldest entries. All mutations are serialized by
// an internal mutex; readers always observe a consistent snapshot.
type Buffer struct {
	mu      sync.RWMutex
	data    []models.Event
	start   int
	count   int
	evicted uint64
}

// NewBuffer creates a buffer retaining at most capacity events.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{data: make([]models.Event, capacity)}
}

// Append stores an event, evicting the oldest entry when full. O(1).
func (b *Buffer) Append(event models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == len(b.data) {
		// Overwrite the oldest slot; steady-state behavior, not an error.
		b.data[b.start] = event
		b.start = (b.start + 1) % len(b.data)
		b.evicted++
		return
	}
	b.data[(b.start+b.count)%len(b.data)] = event
	b.count++
}

// Clear empties the buffer and resets eviction bookkeeping. Idempotent.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start = 0
	b.count = 0
	b.evicted = 0
}

// Len returns the number of retained events.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Capacity returns the maximum retained count.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Evicted returns how many events have been dropped since the last clear.
func (b *Buffer) Evicted() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.evicted
}

// Get returns the event at display position i (0 = oldest retained).
func (b *Buffer) Get(i int) (models.Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= b.count {
		return models.Event{}, false
	}
	return b.data[(b.start+i)%len(b.data)], true
}

// Acknowledge marks the event with the given id. Re-acknowledging is a
// no-op, as is an id that was never buffered or has already been evicted.
// The scan runs newest-first since acks target recent rows.
func (b *Buffer) Acknowledge(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := b.count - 1; i >= 0; i-- {
		idx := (b.start + i) % len(b.data)
		if b.data[idx].ID == id {
			b.data[idx].Acknowledged = true
			return true
		}
	}
	return false
}

// Snapshot copies the retained events in arrival order. View derivation
// works from snapshots so a concurrent append never tears a read.
func (b *Buffer) Snapshot() []models.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Event, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.data[(b.start+i)%len(b.data)]
	}
	return out
}
