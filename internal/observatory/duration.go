package observatory

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layouts the service has been seen to emit, plus the other ISO-8601 offset
// and basic forms. Zone-less layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999Z07",
	"20060102T150405Z0700",
	"20060102T150405Z07",
	"20060102T150405",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.RFC1123,
	time.RFC1123Z,
}

func parseTimestamp(v string) (time.Time, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return time.Time{}, &ParseError{Value: v}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, &ParseError{Value: v}
}

// ScanDuration returns end minus start in seconds.
func ScanDuration(start, end string) (float64, error) {
	s, err := parseTimestamp(start)
	if err != nil {
		return 0, err
	}
	e, err := parseTimestamp(end)
	if err != nil {
		return 0, err
	}
	return e.Sub(s).Seconds(), nil
}
