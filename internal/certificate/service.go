package certificate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/internal/models"
)

// RenderError is a failure of the PDF renderer.
type RenderError struct {
	Person string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render certificate for %s: %v", e.Person, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Service turns a person's summaries into a PDF certificate.
type Service struct {
	renderer PDFRenderer
	page     Page
	profile  Profile
	marker   string
	logger   *zap.Logger
}

// NewService creates a certificate service. marker is the completion-certificate content marker.
func NewService(renderer PDFRenderer, page Page, profile Profile, marker string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{renderer: renderer, page: page, profile: profile, marker: marker, logger: logger}
}

// Rows prepares certificate rows from one person's summaries, leaving out completion entries.
func (s *Service) Rows(summaries []models.SummaryRecord) []models.CertificateRow {
	return RowsFromSummaries(ExcludeCompletionEntries(summaries, s.marker))
}

// Document builds the certificate document without rendering it.
func (s *Service) Document(person string, summaries []models.SummaryRecord, totalStandardSeconds int) (*models.CertificateDocument, error) {
	return Build(person, s.Rows(summaries), totalStandardSeconds)
}

// Render prints a built document.
func (s *Service) Render(ctx context.Context, doc *models.CertificateDocument) ([]byte, error) {
	html, err := s.page.RenderHTML(doc, s.profile)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderPDF(ctx, html)
	if err != nil {
		return nil, &RenderError{Person: doc.Person, Err: err}
	}
	s.logger.Debug("certificate rendered",
		zap.String("person", doc.Person),
		zap.Int("rows", len(doc.Rows)),
		zap.String("issue_date", doc.IssueDate),
		zap.Int("bytes", len(pdf)))
	return pdf, nil
}

// Generate builds and renders the certificate for one person.
func (s *Service) Generate(ctx context.Context, person string, summaries []models.SummaryRecord, totalStandardSeconds int) ([]byte, *models.CertificateDocument, error) {
	doc, err := s.Document(person, summaries, totalStandardSeconds)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.Render(ctx, doc)
	if err != nil {
		return nil, doc, err
	}
	return pdf, doc, nil
}
