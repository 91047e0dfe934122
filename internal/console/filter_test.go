package console

import (
	"testing"

	"github.com/edosstack/edos-console/internal/models"
)

func sampleEvents() []models.Event {
	return []models.Event{
		{ID: "1", Text: "system scan initiated", Severity: models.SeverityOK},
		{ID: "2", Text: "high memory usage", Severity: models.SeverityWarn},
		{ID: "123", Text: "intrusion blocked", Severity: models.SeverityCrit},
		{ID: "4", Text: "firewall rules updated", Severity: models.SeverityInfo},
		{ID: "5", Text: "xabcy", Severity: models.SeverityOK},
	}
}

func TestDeriveViewAllActiveEmptyQuery(t *testing.T) {
	events := sampleEvents()
	view := DeriveView(events, NewFilterParams())
	if len(view) != len(events) {
		t.Fatalf("expected all %d events, got %d", len(events), len(view))
	}
	for i := range view {
		if view[i].ID != events[i].ID {
			t.Fatalf("order not preserved at %d: %q", i, view[i].ID)
		}
	}
}

func TestDeriveViewSeverityToggle(t *testing.T) {
	params := NewFilterParams()
	params.Active[models.SeverityWarn] = false
	view := DeriveView(sampleEvents(), params)
	if len(view) != 4 {
		t.Fatalf("expected 4 events after disabling warn, got %d", len(view))
	}
	for _, event := range view {
		if event.Severity == models.SeverityWarn {
			t.Fatalf("warn event leaked through: %q", event.ID)
		}
	}
}

func TestDeriveViewQueryMatchesTextCaseInsensitive(t *testing.T) {
	params := NewFilterParams()
	params.Query = "ABC"
	view := DeriveView(sampleEvents(), params)
	if len(view) != 1 || view[0].ID != "5" {
		t.Fatalf("expected only the xabcy event, got %+v", view)
	}
}

func TestDeriveViewQueryMatchesID(t *testing.T) {
	params := NewFilterParams()
	params.Query = "123"
	view := DeriveView(sampleEvents(), params)
	if len(view) != 1 || view[0].ID != "123" {
		t.Fatalf("expected only id 123, got %+v", view)
	}
}

func TestDeriveViewQueryNoMatch(t *testing.T) {
	params := NewFilterParams()
	params.Query = "zzzzz"
	if view := DeriveView(sampleEvents(), params); len(view) != 0 {
		t.Fatalf("expected empty view, got %d rows", len(view))
	}
}

func TestDeriveViewSeverityAndQueryCombine(t *testing.T) {
	params := NewFilterParams()
	params.Active[models.SeverityCrit] = false
	params.Query = "123"
	// id 123 matches the query but its severity is disabled.
	if view := DeriveView(sampleEvents(), params); len(view) != 0 {
		t.Fatalf("disabled severity must exclude query matches, got %d rows", len(view))
	}
}

func TestDeriveViewPure(t *testing.T) {
	events := sampleEvents()
	params := NewFilterParams()
	params.Query = "a"
	first := DeriveView(events, params)
	second := DeriveView(events, params)
	if len(first) != len(second) {
		t.Fatalf("derivation not deterministic: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("derivation not deterministic at %d", i)
		}
	}
}
