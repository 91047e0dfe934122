package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseEventTime interprets the ts field of an inbound payload. Upstreams
// disagree on formats, so RFC3339 (with or without sub-second precision) and
// unix epoch seconds or milliseconds are all accepted.
func ParseEventTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		// Epochs past ~2286 as seconds are really millisecond epochs.
		if n > 1e10 {
			return time.UnixMilli(n), nil
		}
		return time.Unix(n, 0), nil
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec), nil
	}

	return time.Time{}, fmt.Errorf("parse time %q: unsupported format", value)
}
