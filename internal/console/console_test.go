package console

import (
	"strconv"
	"testing"

	"github.com/edosstack/edos-console/internal/models"
)

func newTestConsole() *Console {
	return New(Options{
		Capacity:        64,
		RowHeight:       10,
		ViewportHeight:  100,
		BottomTolerance: 5,
	})
}

func TestConsoleWindowLookup(t *testing.T) {
	c := newTestConsole()
	for i := 0; i < 30; i++ {
		c.Ingest(makeEvent(i))
	}

	if c.ViewLen() != 30 {
		t.Fatalf("expected view of 30, got %d", c.ViewLen())
	}

	window := c.Window(10, 5)
	if len(window) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(window))
	}
	for i, event := range window {
		if event.ID != strconv.Itoa(10+i) {
			t.Fatalf("window row %d has id %q", i, event.ID)
		}
	}

	if rows := c.Window(28, 10); len(rows) != 2 {
		t.Fatalf("tail window should clamp to 2 rows, got %d", len(rows))
	}
	if rows := c.Window(100, 5); rows != nil {
		t.Fatalf("out-of-range window should be empty")
	}
}

func TestConsoleFilterRecompute(t *testing.T) {
	c := newTestConsole()
	c.Ingest(models.Event{ID: "a", Text: "scan ok", Severity: models.SeverityOK})
	c.Ingest(models.Event{ID: "b", Text: "disk warning", Severity: models.SeverityWarn})
	c.Ingest(models.Event{ID: "c", Text: "breach detected", Severity: models.SeverityCrit})

	c.SetSeverityEnabled(models.SeverityWarn, false)
	if c.ViewLen() != 2 {
		t.Fatalf("expected 2 after disabling warn, got %d", c.ViewLen())
	}

	c.SetQuery("breach")
	if c.ViewLen() != 1 {
		t.Fatalf("expected 1 after query, got %d", c.ViewLen())
	}
	if rows := c.Window(0, 10); rows[0].ID != "c" {
		t.Fatalf("expected breach row, got %q", rows[0].ID)
	}

	c.SetQuery("")
	c.SetSeverityEnabled(models.SeverityWarn, true)
	if c.ViewLen() != 3 {
		t.Fatalf("expected full view restored, got %d", c.ViewLen())
	}
}

func TestConsoleAcknowledgeReflectedInView(t *testing.T) {
	c := newTestConsole()
	c.Ingest(models.Event{ID: "x", Text: "alert", Severity: models.SeverityCrit})

	if !c.Acknowledge("x") {
		t.Fatalf("expected ack to find event")
	}
	rows := c.Window(0, 1)
	if len(rows) != 1 || !rows[0].Acknowledged {
		t.Fatalf("view does not reflect acknowledgement: %+v", rows)
	}

	if c.Acknowledge("gone") {
		t.Fatalf("absent id must be a no-op")
	}
	if c.BufferLen() != 1 {
		t.Fatalf("no-op ack changed buffer length")
	}
}

func TestConsoleUnseenLifecycle(t *testing.T) {
	c := newTestConsole()
	// Fill past one viewport so scrolling up is possible.
	for i := 0; i < 20; i++ {
		c.Ingest(makeEvent(i))
	}
	if !c.AtBottom() {
		t.Fatalf("auto-advance should keep the tail visible")
	}
	if c.Unseen() != 0 {
		t.Fatalf("at-bottom ingest must not count unseen")
	}

	// Scroll to the top: content 200, viewport 100, offset 0.
	c.SetViewport(0, 100)
	if c.AtBottom() {
		t.Fatalf("scrolled-up viewport should not be at-bottom")
	}

	for i := 20; i < 30; i++ {
		c.Ingest(makeEvent(i))
	}
	if c.Unseen() != 10 {
		t.Fatalf("expected 10 unseen, got %d", c.Unseen())
	}

	c.ScrollToBottom()
	if c.Unseen() != 0 || !c.AtBottom() {
		t.Fatalf("scroll-to-bottom must reset: unseen=%d atBottom=%v", c.Unseen(), c.AtBottom())
	}
}

func TestConsoleUnseenIgnoresFilteredEvents(t *testing.T) {
	c := newTestConsole()
	for i := 0; i < 20; i++ {
		c.Ingest(makeEvent(i))
	}
	c.SetViewport(0, 100)

	c.SetSeverityEnabled(models.SeverityCrit, false)
	c.Ingest(models.Event{ID: "hidden", Severity: models.SeverityCrit})
	if c.Unseen() != 0 {
		t.Fatalf("filtered-out event counted as unseen")
	}
	c.Ingest(models.Event{ID: "visible", Severity: models.SeverityOK})
	if c.Unseen() != 1 {
		t.Fatalf("admitted event not counted, got %d", c.Unseen())
	}
}

func TestConsoleClearResetsDerivedState(t *testing.T) {
	c := newTestConsole()
	for i := 0; i < 40; i++ {
		c.Ingest(makeEvent(i))
	}
	c.SetViewport(0, 100)
	c.Ingest(makeEvent(40))
	if c.Unseen() == 0 {
		t.Fatalf("setup expected unseen > 0")
	}

	c.Clear()
	if c.BufferLen() != 0 || c.ViewLen() != 0 {
		t.Fatalf("clear left rows behind")
	}
	if c.Unseen() != 0 || !c.AtBottom() {
		t.Fatalf("clear must reset tracker state")
	}
	if c.Evicted() != 0 {
		t.Fatalf("clear must reset eviction bookkeeping")
	}
}

func TestConsoleSeverityCounts(t *testing.T) {
	c := newTestConsole()
	c.Ingest(models.Event{ID: "1", Severity: models.SeverityOK})
	c.Ingest(models.Event{ID: "2", Severity: models.SeverityOK})
	c.Ingest(models.Event{ID: "3", Severity: models.SeverityCrit})
	counts := c.SeverityCounts()
	if counts[models.SeverityOK] != 2 || counts[models.SeverityCrit] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestConsoleLookup(t *testing.T) {
	c := newTestConsole()
	c.Ingest(models.Event{ID: "find-me", Text: "hello", Severity: models.SeverityInfo})
	event, ok := c.Lookup("find-me")
	if !ok || event.Text != "hello" {
		t.Fatalf("lookup failed: %+v ok=%v", event, ok)
	}
	if _, ok := c.Lookup("absent"); ok {
		t.Fatalf("lookup of absent id should fail")
	}
}
