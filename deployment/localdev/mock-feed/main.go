// mock-feed is a local stand-in for a live alert feed. It serves the duplex
// feed stream and emits templated security events, including the odd
// non-JSON line so the console's normalization fallback gets exercised.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/edosstack/edos-console/internal/feed"
)

type alertPayload struct {
	ID         string  `json:"id"`
	Timestamp  string  `json:"timestamp"`
	Text       string  `json:"text"`
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
}

var templates = []struct {
	text     string
	severity string
}{
	{"Multiple failed login attempts from %s", "warn"},
	{"Unusual outbound traffic detected on %s", "warn"},
	{"Privilege escalation attempt blocked on %s", "crit"},
	{"Malware signature matched in upload from %s", "crit"},
	{"Port scan detected from %s", "info"},
	{"Routine credential rotation completed on %s", "ok"},
	{"Certificate expiring soon on %s", "info"},
}

var hosts = []string{
	"10.0.4.17", "gateway-2", "db-primary", "edge-proxy-1",
	"192.168.1.44", "build-runner-7", "vpn-concentrator",
}

type mockFeed struct {
	interval time.Duration
}

func (f *mockFeed) Subscribe(stream feed.SubscribeStream) error {
	// Wait for the client's subscribe frame before emitting anything.
	frame, err := stream.Recv()
	if err != nil {
		return err
	}
	log.Printf("client subscribed (frame type %q)", frame.Type)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	initial := make([]alertPayload, 5)
	for i := range initial {
		initial[i] = randomAlert(rng)
	}
	raw, _ := json.Marshal(initial)
	if err := stream.Send(&feed.Frame{Type: feed.TypeInitial, Payload: raw, Timestamp: time.Now().UTC()}); err != nil {
		return err
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stream.Context().Done():
			log.Printf("client disconnected")
			return nil
		case <-ticker.C:
			if err := stream.Send(nextFrame(rng)); err != nil {
				return err
			}
		}
	}
}

func nextFrame(rng *rand.Rand) *feed.Frame {
	now := time.Now().UTC()
	if rng.Float64() < 0.1 {
		// A line that is not a frame payload at all.
		return &feed.Frame{
			Type:      feed.TypeEvent,
			Payload:   json.RawMessage(fmt.Sprintf("%q", "kernel: audit backlog limit exceeded")),
			Timestamp: now,
		}
	}
	raw, _ := json.Marshal(randomAlert(rng))
	return &feed.Frame{Type: feed.TypeNewAlert, Payload: raw, Timestamp: now}
}

func randomAlert(rng *rand.Rand) alertPayload {
	tpl := templates[rng.Intn(len(templates))]
	return alertPayload{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Text:       fmt.Sprintf(tpl.text, hosts[rng.Intn(len(hosts))]),
		Severity:   tpl.severity,
		Confidence: 0.2 + 0.8*rng.Float64(),
	}
}

func main() {
	var (
		address  string
		interval time.Duration
	)
	flag.StringVar(&address, "address", ":9200", "listen address for the feed stream")
	flag.DurationVar(&interval, "interval", 700*time.Millisecond, "emission interval")
	flag.Parse()

	server, err := feed.NewServer(address, &mockFeed{interval: interval})
	if err != nil {
		log.Fatalf("start feed server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("mock feed listening on %s", server.Address())
		if err := server.Start(); err != nil {
			log.Printf("feed server exited: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
	log.Printf("mock feed stopped")
}
