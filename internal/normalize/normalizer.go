package normalize

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edosstack/edos-console/internal/models"
	"github.com/edosstack/edos-console/internal/utils"
)

// Normalizer converts raw inbound payloads into well-formed events. It is
// total over its input: any bytes produce an event, and parse failures fall
// back to carrying the raw payload as the event text.
//
// Simulation mode additionally fabricates missing confidence and severity
// values. That defaulting is deliberately unavailable for live payloads so
// that security-relevant fields are never invented outside the synthetic
// feed.
type Normalizer struct {
	simulate bool

	mu    sync.Mutex
	rng   *rand.Rand
	clock func() time.Time
	newID func() string
}

// New returns a Normalizer. simulate selects the randomized defaulting used
// by the synthetic source.
func New(simulate bool) *Normalizer {
	return &Normalizer{
		simulate: simulate,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:    time.Now,
		newID:    uuid.NewString,
	}
}

// rawPayload mirrors the optional fields of a structured inbound record.
type rawPayload struct {
	ID         any      `json:"id"`
	Ts         any      `json:"ts"`
	Text       string   `json:"text"`
	Message    string   `json:"message"`
	Confidence *float64 `json:"confidence"`
	Severity   string   `json:"severity"`
}

// Normalize produces an Event from arbitrary payload bytes. It never fails:
// malformed or non-object input becomes the event text verbatim.
func (n *Normalizer) Normalize(raw []byte) models.Event {
	trimmed := strings.TrimSpace(string(raw))

	var payload rawPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil || !looksStructured(trimmed) {
		return n.fallback(trimmed)
	}

	event := models.Event{
		ID:   coerceID(payload.ID),
		Text: payload.Text,
	}
	if event.Text == "" {
		event.Text = payload.Message
	}
	if event.Text == "" {
		// A structured record with no message carries the raw form, the
		// same value the malformed path would produce.
		event.Text = trimmed
	}
	if event.ID == "" {
		event.ID = n.generateID()
	}

	event.Timestamp = n.eventTime(payload.Ts)

	if payload.Confidence != nil {
		event.Confidence = clamp01(*payload.Confidence)
	} else if n.simulate {
		event.Confidence = n.randomConfidence()
	}

	if sev, ok := models.ParseSeverity(payload.Severity); ok {
		event.Severity = sev
	} else if n.simulate {
		event.Severity = n.randomSeverity()
	} else {
		event.Severity = models.SeverityInfo
	}

	return event
}

// Fallback reports whether a normalization of raw would take the total
// fallback path. Exposed for ingestion metrics.
func Fallback(raw []byte) bool {
	trimmed := strings.TrimSpace(string(raw))
	if !looksStructured(trimmed) {
		return true
	}
	var payload rawPayload
	return json.Unmarshal([]byte(trimmed), &payload) != nil
}

func (n *Normalizer) fallback(text string) models.Event {
	event := models.Event{
		ID:        n.generateID(),
		Timestamp: n.clock(),
		Text:      text,
		Severity:  models.SeverityInfo,
	}
	if n.simulate {
		event.Confidence = n.randomConfidence()
		event.Severity = n.randomSeverity()
	}
	return event
}

func (n *Normalizer) eventTime(ts any) time.Time {
	switch v := ts.(type) {
	case string:
		if t, err := utils.ParseEventTime(v); err == nil {
			return t
		}
	case float64:
		if t, err := utils.ParseEventTime(strconv.FormatFloat(v, 'f', -1, 64)); err == nil {
			return t
		}
	}
	return n.clock()
}

func (n *Normalizer) generateID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.newID()
}

// randomConfidence draws uniformly from [0.2, 1.0].
func (n *Normalizer) randomConfidence() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return 0.2 + 0.8*n.rng.Float64()
}

// randomSeverity draws 60% ok, 20% warn, 15% info, 5% crit.
func (n *Normalizer) randomSeverity() models.Severity {
	n.mu.Lock()
	defer n.mu.Unlock()
	roll := n.rng.Float64()
	switch {
	case roll < 0.60:
		return models.SeverityOK
	case roll < 0.80:
		return models.SeverityWarn
	case roll < 0.95:
		return models.SeverityInfo
	default:
		return models.SeverityCrit
	}
}

func looksStructured(trimmed string) bool {
	return strings.HasPrefix(trimmed, "{")
}

func coerceID(id any) string {
	switch v := id.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
