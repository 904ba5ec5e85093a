package certificate

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/internal/export"
	"github.com/aura-webinar/studytime/internal/reconcile"
	"github.com/aura-webinar/studytime/pkg/queue"
	"github.com/aura-webinar/studytime/pkg/response"
	"github.com/aura-webinar/studytime/pkg/storage"
)

// ErrQueueUnavailable is returned for async requests when no job queue or bucket is configured.
var ErrQueueUnavailable = errors.New("certificate queue not configured")

// Enqueuer accepts certificate render jobs.
type Enqueuer interface {
	EnqueueCertificate(ctx context.Context, id string, payload queue.CertificatePayload) error
}

// Presigner signs download URLs for queued certificates.
type Presigner interface {
	GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	PresignExpire() time.Duration
}

// Handler handles POST /certificates.
type Handler struct {
	source    reconcile.BatchSource
	rules     reconcile.Rules
	svc       *Service
	jobs      Enqueuer
	presigner Presigner
	bucket    string
	logger    *zap.Logger
}

// NewHandler creates a certificate handler. jobs, presigner and bucket may be empty; async
// requests are then refused.
func NewHandler(source reconcile.BatchSource, rules reconcile.Rules, svc *Service, jobs Enqueuer, presigner Presigner, bucket string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{source: source, rules: rules, svc: svc, jobs: jobs, presigner: presigner, bucket: bucket, logger: logger}
}

// Create renders the certificate of the person form field. With async=true the render is
// queued and 202 {job_id, destination, download_url} is returned.
func (h *Handler) Create(c *gin.Context) {
	person := strings.TrimSpace(c.PostForm(reconcile.FieldPerson))
	if person == "" {
		_ = c.Error(&reconcile.FilterError{Field: reconcile.FieldPerson, Value: person})
		return
	}
	async, _ := strconv.ParseBool(c.DefaultPostForm("async", "false"))
	if async && (h.jobs == nil || h.bucket == "") {
		_ = c.Error(ErrQueueUnavailable)
		return
	}

	batch, err := h.source.FromRequest(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	req := reconcile.NewRequest(batch)
	req.Rules = h.rules
	req.Person = person
	result, err := reconcile.Reconcile(req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if async {
		h.enqueue(c, person, result)
		return
	}

	pdf, _, err := h.svc.Generate(c.Request.Context(), person, result.Summaries, result.TotalStandardSeconds)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", export.Attachment(FileName(person)))
	c.Data(http.StatusOK, storage.ContentTypePDF, pdf)
}

func (h *Handler) enqueue(c *gin.Context, person string, result *reconcile.Result) {
	ctx := c.Request.Context()
	id := queue.NewJobID()
	key := storage.CertificateKey(id, FileName(person))
	payload := queue.CertificatePayload{
		Person:               person,
		Rows:                 h.svc.Rows(result.Summaries),
		TotalStandardSeconds: result.TotalStandardSeconds,
		Destination:          storage.URI(h.bucket, key),
	}
	if err := h.jobs.EnqueueCertificate(ctx, id, payload); err != nil {
		_ = c.Error(err)
		return
	}

	body := gin.H{"job_id": id, "destination": payload.Destination}
	if h.presigner != nil {
		url, err := h.presigner.GeneratePresignedDownloadURL(ctx, h.bucket, key, h.presigner.PresignExpire())
		if err != nil {
			h.logger.Warn("presign certificate url", zap.String("job_id", id), zap.Error(err))
		} else {
			body["download_url"] = url
		}
	}
	h.logger.Info("certificate job queued", zap.String("job_id", id), zap.String("person", person))
	response.Accepted(c, body)
}
