package utils

import (
	"fmt"
	"strings"
	"time"
)

// CanonicalLayout is the wall-clock layout every slot and booking window is
// stored in. Strings in this layout sort chronologically.
const CanonicalLayout = "2006-01-02 15:04"

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	CanonicalLayout,
}

// NormalizeTimestamp converts a client supplied timestamp into the canonical
// layout. Zoned inputs (RFC3339) are converted into loc first; zone-less
// inputs are taken as wall-clock time in loc.
func NormalizeTimestamp(raw string, loc *time.Location) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc).Format(CanonicalLayout), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.Format(CanonicalLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognised timestamp %q", raw)
}

// ParseCanonical parses a canonical wall-clock string. The result carries UTC
// only so that arithmetic on it stays pure wall-clock arithmetic.
func ParseCanonical(s string) (time.Time, error) {
	return time.Parse(CanonicalLayout, s)
}

func FormatCanonical(t time.Time) string {
	return t.Format(CanonicalLayout)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

// AddMinutes shifts a canonical timestamp by the given number of minutes.
func AddMinutes(s string, minutes int) (string, error) {
	t, err := ParseCanonical(s)
	if err != nil {
		return "", err
	}
	return FormatCanonical(t.Add(time.Duration(minutes) * time.Minute)), nil
}

// WindowMinutes returns the length of [start, end) in minutes.
func WindowMinutes(start, end string) (int, error) {
	s, err := ParseCanonical(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseCanonical(end)
	if err != nil {
		return 0, err
	}
	return int(e.Sub(s) / time.Minute), nil
}
