package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MalformedDurationError reports an HH:MM:SS value that could not be converted to seconds.
type MalformedDurationError struct {
	Value  string
	Reason string
}

func (e *MalformedDurationError) Error() string {
	return fmt.Sprintf("malformed duration %q: %s", e.Value, e.Reason)
}

// maxHours keeps h*3600+59*60+59 within int.
const maxHours = (math.MaxInt - 3599) / 3600

// TimeToSeconds converts an H+:MM:SS string to a count of seconds.
// Hours may exceed 24 up to maxHours; minutes and seconds must be below 60.
func TimeToSeconds(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, &MalformedDurationError{Value: s, Reason: "expected HH:MM:SS"}
	}
	var fields [3]int
	for i, p := range parts {
		if p == "" {
			return 0, &MalformedDurationError{Value: s, Reason: "empty segment"}
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return 0, &MalformedDurationError{Value: s, Reason: "non-numeric segment " + strconv.Quote(p)}
			}
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, &MalformedDurationError{Value: s, Reason: err.Error()}
		}
		fields[i] = n
	}
	if fields[0] > maxHours {
		return 0, &MalformedDurationError{Value: s, Reason: "hours out of range"}
	}
	if fields[1] >= 60 || fields[2] >= 60 {
		return 0, &MalformedDurationError{Value: s, Reason: "minutes and seconds must be below 60"}
	}
	return fields[0]*3600 + fields[1]*60 + fields[2], nil
}

// AddSeconds adds a duration parsed from value to total, failing instead of wrapping.
func AddSeconds(total, n int, value string) (int, error) {
	if n > math.MaxInt-total {
		return 0, &MalformedDurationError{Value: value, Reason: "running total out of range"}
	}
	return total + n, nil
}

// SecondsToTime formats seconds as HH:MM:SS. Hours may exceed 24 (and 99); negatives clamp to zero.
func SecondsToTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
