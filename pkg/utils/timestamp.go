package utils

import (
	"strings"
	"time"
)

// TimestampLayouts are the date-time layouts seen in LMS exports, most specific first.
var TimestampLayouts = []string{
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/01/02",
	"2006-01-02",
}

const (
	// StartLayout is how start timestamps are written back out.
	StartLayout = "2006/01/02 15:04"
	// CompletionLayout is how derived completion timestamps are written.
	CompletionLayout = "2006/01/02 15:04:05"
	// DateLayout is the certificate issue-date format.
	DateLayout = "2006-01-02"
)

// ParseTimestamp parses a wall-clock timestamp in any of TimestampLayouts.
// The second return is false for empty or unrecognised values.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
