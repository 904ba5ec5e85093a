package browse

import (
	"context"

	"github.com/aura-webinar/studytime/internal/certificate"
	"github.com/aura-webinar/studytime/internal/export"
	"github.com/aura-webinar/studytime/internal/models"
	"github.com/aura-webinar/studytime/pkg/storage"
)

// Actions are the side effects the browser can trigger.
type Actions interface {
	ExportCSV(ctx context.Context, target string, summaries []models.SummaryRecord) error
	SaveCertificate(ctx context.Context, target, person string, summaries []models.SummaryRecord, totalStandardSeconds int) error
}

// Saver writes exports and certificates through a sink.
type Saver struct {
	Sink         *export.Sink
	Certificates *certificate.Service
}

// ExportCSV writes summaries as CSV to target.
func (s Saver) ExportCSV(ctx context.Context, target string, summaries []models.SummaryRecord) error {
	data, err := export.CSV(summaries)
	if err != nil {
		return err
	}
	return s.Sink.Write(ctx, target, export.ContentTypeCSV, data)
}

// SaveCertificate renders person's certificate and writes it to target.
// The target is checked first so a cancelled prompt never starts the browser.
func (s Saver) SaveCertificate(ctx context.Context, target, person string, summaries []models.SummaryRecord, totalStandardSeconds int) error {
	if _, err := export.ParseDestination(target); err != nil {
		return err
	}
	pdf, _, err := s.Certificates.Generate(ctx, person, summaries, totalStandardSeconds)
	if err != nil {
		return err
	}
	return s.Sink.Write(ctx, target, storage.ContentTypePDF, pdf)
}
