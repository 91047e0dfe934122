package models

import (
	"strings"
	"time"
)

// Event is one normalized unit of console output — an alert or log line as
// the dashboard displays it.
type Event struct {
	ID           string
	Timestamp    time.Time
	Text         string
	Confidence   float64
	Severity     Severity
	Acknowledged bool
}

// Severity classifies an event for filtering and styling.
type Severity string

const (
	SeverityOK   Severity = "ok"
	SeverityWarn Severity = "warn"
	SeverityCrit Severity = "crit"
	SeverityInfo Severity = "info"
)

// Severities lists the fixed severity set in display order.
var Severities = []Severity{SeverityOK, SeverityWarn, SeverityCrit, SeverityInfo}

// ParseSeverity maps a payload severity string onto the fixed set. Upstream
// systems report levels under several vocabularies (log levels, alert
// levels); unknown values land on info rather than failing.
func ParseSeverity(value string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ok", "low", "normal":
		return SeverityOK, true
	case "warn", "warning", "medium":
		return SeverityWarn, true
	case "crit", "critical", "error", "high":
		return SeverityCrit, true
	case "info", "debug":
		return SeverityInfo, true
	default:
		return SeverityInfo, false
	}
}

// Valid reports whether s is one of the fixed severity values.
func (s Severity) Valid() bool {
	switch s {
	case SeverityOK, SeverityWarn, SeverityCrit, SeverityInfo:
		return true
	}
	return false
}
