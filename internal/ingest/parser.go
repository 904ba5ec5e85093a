// Package ingest reads LMS completion exports and standard-time tables into a models.Batch.
package ingest

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/internal/models"
	"github.com/aura-webinar/studytime/internal/reconcile"
	"github.com/aura-webinar/studytime/pkg/utils"
)

// Source names the two input files of one batch.
type Source struct {
	RecordsPath       string
	StandardTimesPath string
}

// Parser turns a Source into a Batch.
type Parser interface {
	Parse(ctx context.Context, src Source) (*models.Batch, error)
}

// CSVParser parses the exports in process.
type CSVParser struct {
	rules    reconcile.Rules
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCSVParser creates a parser. rules decide which groups pass when completion dates are derived.
func NewCSVParser(rules reconcile.Rules, logger *zap.Logger) *CSVParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVParser{rules: rules, validate: validator.New(), logger: logger}
}

// Parse reads both files, joins standard times onto the records and sorts them.
func (p *CSVParser) Parse(ctx context.Context, src Source) (*models.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	standards, total, err := ReadStandardTimes(src.StandardTimesPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(src.RecordsPath)
	if err != nil {
		return nil, &ParseError{File: src.RecordsPath, Err: err}
	}
	text, enc, err := decodeText(data)
	if err != nil {
		return nil, &ParseError{File: src.RecordsPath, Err: err}
	}
	header, rows, err := readTable(text)
	if err != nil {
		return nil, &ParseError{File: src.RecordsPath, Err: err}
	}
	cols := newColumns(header)
	if missing := cols.missing(requiredRecordColumns); len(missing) > 0 {
		return nil, &ParseError{File: src.RecordsPath, Err: &MissingColumnsError{Columns: missing}}
	}

	records := make([]models.RawRecord, 0, len(rows))
	for _, row := range rows {
		rec := recordFrom(func(name string) string { return cols.get(row.cells, name) })
		if err := p.validate.Struct(rec); err != nil {
			return nil, &ParseError{File: src.RecordsPath, Line: row.line, Err: err}
		}
		if d, ok := standards.Lookup(rec.Content); ok {
			rec.StandardDuration = d
		}
		records = append(records, rec)
	}

	if !cols.has(ColEnd) {
		if err := deriveCompletion(records, standards, p.rules); err != nil {
			return nil, &ParseError{File: src.RecordsPath, Err: err}
		}
	}
	sortRecords(records, standards)

	p.logger.Debug("batch parsed",
		zap.String("records", src.RecordsPath),
		zap.String("encoding", enc),
		zap.Int("rows", len(records)),
		zap.Int("standard_entries", standards.Len()),
		zap.Int("total_standard_seconds", total))

	return &models.Batch{Records: records, StandardTimes: standards, TotalStandardSeconds: total}, nil
}

// deriveCompletion fills End with start + standard for rows whose group passes.
// Rows without a standard time or a parseable start keep an empty End.
func deriveCompletion(records []models.RawRecord, standards models.StandardTimes, rules reconcile.Rules) error {
	var eligible []models.RawRecord
	for _, r := range records {
		if r.StandardDuration != "" {
			eligible = append(eligible, r)
		}
	}
	summaries, err := reconcile.DeriveSummaries(eligible, standards, rules)
	if err != nil {
		return err
	}
	passed := make(map[[2]string]bool, len(summaries))
	for _, s := range summaries {
		passed[[2]string{s.Person, s.Content}] = s.Mark == models.MarkPass
	}
	for i := range records {
		r := &records[i]
		r.End = ""
		if !passed[[2]string{r.Person, r.Content}] {
			continue
		}
		start, ok := utils.ParseTimestamp(r.Start)
		if !ok {
			continue
		}
		standard, err := utils.TimeToSeconds(r.StandardDuration)
		if err != nil {
			return err
		}
		r.End = start.Add(time.Duration(standard) * time.Second).Format(utils.CompletionLayout)
	}
	return nil
}

// sortRecords orders by person, then standard-table order (unknown content last), then start time.
// Parseable start times are rewritten in the minute layout.
func sortRecords(records []models.RawRecord, standards models.StandardTimes) {
	rank := make(map[string]int, standards.Len())
	for i, c := range standards.Order() {
		rank[c] = i
	}
	for _, r := range records {
		if _, ok := rank[r.Content]; !ok {
			rank[r.Content] = len(rank)
		}
	}

	type keyed struct {
		rec   models.RawRecord
		start time.Time
		has   bool
	}
	ks := make([]keyed, len(records))
	for i, r := range records {
		t, ok := utils.ParseTimestamp(r.Start)
		ks[i] = keyed{rec: r, start: t, has: ok}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.rec.Person != b.rec.Person {
			return a.rec.Person < b.rec.Person
		}
		if ra, rb := rank[a.rec.Content], rank[b.rec.Content]; ra != rb {
			return ra < rb
		}
		if a.has != b.has {
			return a.has
		}
		return a.has && a.start.Before(b.start)
	})
	for i, k := range ks {
		if k.has {
			k.rec.Start = k.start.Format(utils.StartLayout)
		}
		records[i] = k.rec
	}
}
