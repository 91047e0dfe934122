package source

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/edosstack/edos-console/internal/metrics"
	"github.com/edosstack/edos-console/internal/models"
	"github.com/edosstack/edos-console/internal/normalize"
)

// Simulator emits one synthetic event per tick. Payloads are deliberately
// uneven: most carry full fields, some omit severity or confidence so the
// normalizer's simulation defaults get exercised, and a few are not JSON
// at all.
type Simulator struct {
	Interval   time.Duration
	Normalizer *normalize.Normalizer
	Deliver    func(models.Event) bool

	mu  sync.Mutex
	rng *rand.Rand
	seq int
}

var simTemplates = []string{
	"Multiple failed login attempts from %s",
	"Unusual outbound traffic detected on %s",
	"Privilege escalation attempt blocked on %s",
	"Malware signature matched in upload from %s",
	"Port scan detected from %s",
	"Configuration drift detected on %s",
	"Certificate expiring soon on %s",
	"Anomalous API call rate from %s",
}

var simHosts = []string{
	"10.0.4.17", "gateway-2", "db-primary", "edge-proxy-1",
	"192.168.1.44", "build-runner-7", "vpn-concentrator",
}

// Run ticks until the context is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 700 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload := s.nextPayload()
			if normalize.Fallback(payload) {
				metrics.ObserveFallback()
			}
			s.Deliver(s.Normalizer.Normalize(payload))
		}
	}
}

// nextPayload builds the raw bytes for one tick.
func (s *Simulator) nextPayload() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.seq++

	text := fmt.Sprintf(simTemplates[s.rng.Intn(len(simTemplates))], simHosts[s.rng.Intn(len(simHosts))])

	roll := s.rng.Float64()
	switch {
	case roll < 0.08:
		// Plain text line, not JSON.
		return []byte(text)
	case roll < 0.35:
		// Partial object: no severity or confidence, defaults kick in.
		raw, _ := json.Marshal(map[string]any{
			"id":   fmt.Sprintf("sim-%d", s.seq),
			"text": text,
		})
		return raw
	default:
		severity := models.Severities[s.rng.Intn(len(models.Severities))]
		raw, _ := json.Marshal(map[string]any{
			"id":         fmt.Sprintf("sim-%d", s.seq),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
			"text":       text,
			"severity":   string(severity),
			"confidence": 0.2 + 0.8*s.rng.Float64(),
		})
		return raw
	}
}
