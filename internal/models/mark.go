package models

import (
	"fmt"
	"strings"
)

// Mark says whether a person met the standard time for a content item.
type Mark int

const (
	// MarkFail means the accumulated time fell short of the standard.
	MarkFail Mark = iota
	// MarkPass means the standard was met, or the content needs no time at all.
	MarkPass
)

func (m Mark) String() string {
	if m == MarkPass {
		return "pass"
	}
	return "fail"
}

// Symbol is the O/X form used in spreadsheets.
func (m Mark) Symbol() string {
	if m == MarkPass {
		return "O"
	}
	return "X"
}

// ParseMark accepts pass/fail or O/X, case-insensitively.
func ParseMark(s string) (Mark, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass", "o":
		return MarkPass, nil
	case "fail", "x":
		return MarkFail, nil
	}
	return MarkFail, fmt.Errorf("unknown mark %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mark) UnmarshalText(b []byte) error {
	v, err := ParseMark(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
