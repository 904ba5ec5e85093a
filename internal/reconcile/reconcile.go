package reconcile

import "github.com/aura-webinar/studytime/internal/models"

// Request carries everything one reconciliation needs. Nothing is kept between calls.
type Request struct {
	Records              []models.RawRecord
	StandardTimes        models.StandardTimes
	TotalStandardSeconds int
	Person               string
	Mark                 *models.Mark
	Rules                Rules
}

// Result is the outcome of one reconciliation.
type Result struct {
	Summaries            []models.SummaryRecord `json:"summaries"`
	Persons              []string               `json:"persons"`
	TotalStandardSeconds int                    `json:"total_standard_time"`
}

// NewRequest starts a request from a parsed batch with default rules.
func NewRequest(batch *models.Batch) Request {
	return Request{
		Records:              batch.Records,
		StandardTimes:        batch.StandardTimes,
		TotalStandardSeconds: batch.TotalStandardSeconds,
		Rules:                DefaultRules(),
	}
}

// Reconcile filters raw rows by person, derives summaries, then filters by mark.
// On error no partial result is returned.
func Reconcile(req Request) (*Result, error) {
	summaries, err := DeriveSummaries(FilterRaw(req.Records, req.Person), req.StandardTimes, req.Rules)
	if err != nil {
		return nil, err
	}
	return &Result{
		Summaries:            FilterSummaries(summaries, req.Mark),
		Persons:              Persons(req.Records),
		TotalStandardSeconds: req.TotalStandardSeconds,
	}, nil
}
