package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aura-webinar/studytime/internal/models"
)

// ReadStandardTimes loads a UTF-8 standard-time table and returns it with its total in seconds.
// When a content appears twice the first row wins.
func ReadStandardTimes(path string) (models.StandardTimes, int, error) {
	st := models.NewStandardTimes()
	data, err := os.ReadFile(path)
	if err != nil {
		return st, 0, &ParseError{File: path, Err: err}
	}
	header, rows, err := readTable(bytes.TrimPrefix(data, utf8BOM))
	if err != nil {
		return st, 0, &ParseError{File: path, Err: err}
	}
	cols := newColumns(header)
	if missing := cols.missing(requiredStandardColumns); len(missing) > 0 {
		return st, 0, &ParseError{File: path, Err: &MissingColumnsError{Columns: missing}}
	}
	for _, row := range rows {
		content := cols.get(row.cells, ColContent)
		if content == "" {
			continue
		}
		if _, dup := st.Lookup(content); dup {
			continue
		}
		standard := cols.get(row.cells, ColStandard)
		if standard == "" {
			return st, 0, &ParseError{File: path, Line: row.line, Err: fmt.Errorf("%s has no %s", content, ColStandard)}
		}
		st.Set(content, standard)
	}
	total, err := st.TotalSeconds()
	if err != nil {
		return st, 0, &ParseError{File: path, Err: err}
	}
	return st, total, nil
}

type tableRow struct {
	line  int
	cells []string
}

// readTable reads a whole CSV document. Fully blank rows are dropped.
func readTable(data []byte) ([]string, []tableRow, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, errors.New("empty file")
	}
	if err != nil {
		return nil, nil, err
	}
	var rows []tableRow
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if blankRow(row) {
			continue
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, tableRow{line: line, cells: row})
	}
	return header, rows, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// StandardTables are the named standard-time tables kept in one directory.
type StandardTables struct {
	Dir string
}

// NewStandardTables returns the tables found under dir.
func NewStandardTables(dir string) *StandardTables {
	return &StandardTables{Dir: dir}
}

// List returns table names (file names without .csv), sorted.
func (t *StandardTables) List() ([]string, error) {
	if t == nil || t.Dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(t.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list standard tables: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// Resolve maps a table name or a file path to a readable file path.
func (t *StandardTables) Resolve(nameOrPath string) (string, error) {
	if nameOrPath == "" {
		return "", errors.New("no standard-time table given")
	}
	if isFile(nameOrPath) {
		return nameOrPath, nil
	}
	if p, err := t.ResolveName(nameOrPath); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("standard-time table %q not found", nameOrPath)
}

// ResolveName maps a bare table name to its file in Dir.
func (t *StandardTables) ResolveName(name string) (string, error) {
	if t == nil || t.Dir == "" {
		return "", errors.New("no standard-time table directory configured")
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	for _, candidate := range []string{name + ".csv", name} {
		p := filepath.Join(t.Dir, candidate)
		if isFile(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("standard-time table %q not found", name)
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}
