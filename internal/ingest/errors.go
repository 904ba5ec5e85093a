package ingest

import (
	"fmt"
	"strings"
)

// ParseError is a malformed or incomplete input file.
type ParseError struct {
	File string
	Line int // 0 when the error is not tied to a row
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingColumnsError lists required columns absent from a header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing columns: " + strings.Join(e.Columns, ", ")
}

// ExternalProcessError is a failed run of an external batch parser.
type ExternalProcessError struct {
	ExitCode int
	Stderr   string
	Message  string
	Err      error
}

func (e *ExternalProcessError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("batch parser: %s", e.Message)
	case e.ExitCode != 0:
		return fmt.Sprintf("batch parser exited with code %d: %s", e.ExitCode, strings.TrimSpace(e.Stderr))
	case e.Err != nil:
		return fmt.Sprintf("batch parser: %v", e.Err)
	}
	return "batch parser failed"
}

func (e *ExternalProcessError) Unwrap() error { return e.Err }
