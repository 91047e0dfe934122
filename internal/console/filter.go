package console

import (
	"strings"

	"github.com/edosstack/edos-console/internal/models"
)

// FilterParams are the inputs of view derivation: the active severity set
// and a free-text query.
type FilterParams struct {
	Active map[models.Severity]bool
	Query  string
}

// NewFilterParams returns params with every severity active and no query.
func NewFilterParams() FilterParams {
	active := make(map[models.Severity]bool, len(models.Severities))
	for _, sev := range models.Severities {
		active[sev] = true
	}
	return FilterParams{Active: active}
}

// Matches reports whether a single event passes the filter.
func (p FilterParams) Matches(event models.Event) bool {
	if !p.Active[event.Severity] {
		return false
	}
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return true
	}
	lower := strings.ToLower(query)
	if strings.Contains(strings.ToLower(event.Text), lower) {
		return true
	}
	return strings.Contains(event.ID, query)
}

// DeriveView computes the ordered filtered subset of a buffer snapshot.
// Pure: the same snapshot and params always yield the same view.
func DeriveView(snapshot []models.Event, params FilterParams) []models.Event {
	view := make([]models.Event, 0, len(snapshot))
	for _, event := range snapshot {
		if params.Matches(event) {
			view = append(view, event)
		}
	}
	return view
}
