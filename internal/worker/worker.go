package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/internal/certificate"
	"github.com/aura-webinar/studytime/internal/models"
	"github.com/aura-webinar/studytime/pkg/queue"
	"github.com/aura-webinar/studytime/pkg/storage"
)

// Jobs is the queue side the processor consumes.
type Jobs interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
	DeadLetter(ctx context.Context, job *queue.Job, cause error) error
}

// Renderer prints a built certificate document.
type Renderer interface {
	Render(ctx context.Context, doc *models.CertificateDocument) ([]byte, error)
}

// Writer delivers rendered bytes to a destination (see export.Sink).
type Writer interface {
	Write(ctx context.Context, target, contentType string, data []byte) error
}

// CertificateProcessor renders queued certificates and writes them to their destination.
type CertificateProcessor struct {
	jobs     Jobs
	renderer Renderer
	out      Writer
	backoff  time.Duration
	logger   *zap.Logger
}

// NewCertificateProcessor creates a certificate job processor.
func NewCertificateProcessor(jobs Jobs, renderer Renderer, out Writer, logger *zap.Logger) *CertificateProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateProcessor{jobs: jobs, renderer: renderer, out: out, backoff: queue.RetryBackoff, logger: logger}
}

// Process executes one certificate job. Failures no retry can fix come back as *queue.PermanentError.
func (p *CertificateProcessor) Process(ctx context.Context, job *queue.Job) error {
	payload, err := queue.DecodeCertificate(job)
	if err != nil {
		return queue.Permanent(err)
	}
	if payload.Destination == "" {
		return queue.Permanent(fmt.Errorf("job %s has no destination", job.ID))
	}

	doc, err := certificate.Build(payload.Person, payload.Rows, payload.TotalStandardSeconds)
	if err != nil {
		return queue.Permanent(fmt.Errorf("build certificate: %w", err))
	}
	pdf, err := p.renderer.Render(ctx, doc)
	if err != nil {
		return err
	}
	if err := p.out.Write(ctx, payload.Destination, storage.ContentTypePDF, pdf); err != nil {
		return fmt.Errorf("write certificate: %w", err)
	}

	p.logger.Info("certificate job completed",
		zap.String("job_id", job.ID),
		zap.String("person", payload.Person),
		zap.String("destination", payload.Destination),
		zap.Int("bytes", len(pdf)))
	return nil
}

// Run starts the worker loop: dequeue, process, retry transient errors and dead-letter permanent ones.
func (p *CertificateProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("certificate worker stopping")
			return
		default:
		}

		job, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)), zap.Int("attempt", job.Attempt))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Bool("permanent", queue.IsPermanent(err)), zap.Error(err))
			if queue.IsPermanent(err) {
				if dlqErr := p.jobs.DeadLetter(ctx, job, err); dlqErr != nil {
					p.logger.Error("dead-letter failed", zap.Error(dlqErr))
				}
				continue
			}
			if reErr := p.jobs.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *CertificateProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
