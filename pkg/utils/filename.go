package utils

import (
	"strings"
	"unicode"
)

// SafeFileComponent turns a free-text name (a person from the records CSV) into a single path
// element: separators and control characters become '_', and "", "." or ".." become "_".
func SafeFileComponent(name string) string {
	s := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)
	if s == "" || strings.Trim(s, ".") == "" {
		return "_"
	}
	return s
}
