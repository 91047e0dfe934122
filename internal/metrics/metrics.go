package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/edosstack/edos-console/internal/models"
)

var (
	eventsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edos_console",
			Name:      "events_ingested_total",
			Help:      "Events admitted into the buffer, partitioned by severity.",
		},
		[]string{"severity"},
	)

	eventsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "edos_console",
			Name:      "events_evicted_total",
			Help:      "Events dropped by FIFO eviction at buffer capacity.",
		},
	)

	normalizeFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "edos_console",
			Name:      "normalize_fallbacks_total",
			Help:      "Payloads that took the total text fallback during normalization.",
		},
	)

	pausedDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "edos_console",
			Name:      "paused_drops_total",
			Help:      "Deliveries suppressed at the source while ingestion was paused.",
		},
	)

	staleDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "edos_console",
			Name:      "stale_drops_total",
			Help:      "Deliveries discarded because their source had been torn down.",
		},
	)

	bufferEvents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "edos_console",
			Name:      "buffer_events",
			Help:      "Events currently retained in the buffer.",
		},
	)

	unseenEvents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "edos_console",
			Name:      "unseen_events",
			Help:      "Events admitted while the viewport was away from the tail.",
		},
	)

	connectionState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edos_console",
			Name:      "connection_state",
			Help:      "Live connection state (1 for the current state, 0 otherwise).",
		},
		[]string{"state"},
	)
)

// Register attaches console collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		eventsIngestedTotal,
		eventsEvictedTotal,
		normalizeFallbacksTotal,
		pausedDropsTotal,
		staleDropsTotal,
		bufferEvents,
		unseenEvents,
		connectionState,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveIngest records one admitted event.
func ObserveIngest(severity models.Severity) {
	eventsIngestedTotal.WithLabelValues(string(severity)).Inc()
}

// ObserveFallback records a normalization that fell back to raw text.
func ObserveFallback() { normalizeFallbacksTotal.Inc() }

// ObservePausedDrop records a delivery suppressed by pause.
func ObservePausedDrop() { pausedDropsTotal.Inc() }

// ObserveStaleDrop records a delivery discarded after source teardown.
func ObserveStaleDrop() { staleDropsTotal.Inc() }

// SetBufferState publishes the current buffer gauges.
func SetBufferState(retained, unseen int) {
	bufferEvents.Set(float64(retained))
	unseenEvents.Set(float64(unseen))
}

// ObserveEvictions adds newly observed FIFO evictions to the running total.
func ObserveEvictions(n uint64) {
	if n > 0 {
		eventsEvictedTotal.Add(float64(n))
	}
}

// SetConnectionState publishes the live connection state as a one-hot gauge.
func SetConnectionState(current string, all []string) {
	for _, state := range all {
		value := 0.0
		if state == current {
			value = 1.0
		}
		connectionState.WithLabelValues(state).Set(value)
	}
}
