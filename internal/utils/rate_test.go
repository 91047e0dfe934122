package utils

import (
	"testing"
	"time"
)

func TestRateTrackerWindow(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	tracker := NewRateTracker(10 * time.Second)
	tracker.now = func() time.Time { return current }

	for i := 0; i < 20; i++ {
		tracker.Observe()
		current = current.Add(time.Second)
	}

	// 20 observations, one per second, over a 10s window: only the most
	// recent 10 survive trimming.
	if got := tracker.Count(); got != 10 {
		t.Fatalf("expected 10 samples in window, got %d", got)
	}
	rate := tracker.PerSecond()
	if rate < 0.9 || rate > 1.2 {
		t.Fatalf("expected ~1 event/sec, got %f", rate)
	}
}

func TestRateTrackerEmpty(t *testing.T) {
	tracker := NewRateTracker(time.Minute)
	if tracker.PerSecond() != 0 {
		t.Fatalf("expected zero rate with no samples")
	}
	if tracker.Count() != 0 {
		t.Fatalf("expected zero count with no samples")
	}
}

func TestParseEventTime(t *testing.T) {
	if _, err := ParseEventTime(""); err == nil {
		t.Fatalf("expected error for empty value")
	}

	rfc, err := ParseEventTime("2026-08-23T10:00:00Z")
	if err != nil {
		t.Fatalf("rfc3339 parse failed: %v", err)
	}
	if rfc.UTC().Hour() != 10 {
		t.Fatalf("unexpected parsed hour: %d", rfc.UTC().Hour())
	}

	sec, err := ParseEventTime("1700000000")
	if err != nil {
		t.Fatalf("epoch seconds parse failed: %v", err)
	}
	if sec.Unix() != 1_700_000_000 {
		t.Fatalf("unexpected epoch seconds: %d", sec.Unix())
	}

	ms, err := ParseEventTime("1700000000123")
	if err != nil {
		t.Fatalf("epoch millis parse failed: %v", err)
	}
	if ms.UnixMilli() != 1_700_000_000_123 {
		t.Fatalf("unexpected epoch millis: %d", ms.UnixMilli())
	}

	if _, err := ParseEventTime("not-a-time"); err == nil {
		t.Fatalf("expected error for garbage value")
	}
}
