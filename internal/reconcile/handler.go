package reconcile

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/internal/models"
	"github.com/aura-webinar/studytime/pkg/response"
)

// Form field names for filters.
const (
	FieldPerson = "person"
	FieldMark   = "mark"
)

// BatchSource parses the uploaded input of one request.
type BatchSource interface {
	FromRequest(c *gin.Context) (*models.Batch, error)
}

// FormRequest builds a Request from a parsed batch and the person/mark form fields.
func FormRequest(c *gin.Context, batch *models.Batch, rules Rules) (Request, error) {
	req := NewRequest(batch)
	req.Rules = rules
	req.Person = strings.TrimSpace(c.PostForm(FieldPerson))
	if v := strings.TrimSpace(c.PostForm(FieldMark)); v != "" && !strings.EqualFold(v, "all") {
		m, err := models.ParseMark(v)
		if err != nil {
			return req, &FilterError{Field: FieldMark, Value: v, Err: err}
		}
		req.Mark = &m
	}
	return req, nil
}

// Handler handles POST /reconcile.
type Handler struct {
	source BatchSource
	rules  Rules
	logger *zap.Logger
}

// NewHandler creates a reconcile handler.
func NewHandler(source BatchSource, rules Rules, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{source: source, rules: rules, logger: logger}
}

// Reconcile parses the uploads, applies the filters and returns the summaries.
// Errors are attached to the context for the error middleware.
func (h *Handler) Reconcile(c *gin.Context) {
	batch, err := h.source.FromRequest(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	req, err := FormRequest(c, batch, h.rules)
	if err != nil {
		_ = c.Error(err)
		return
	}
	result, err := Reconcile(req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.logger.Debug("reconciled",
		zap.Int("records", len(batch.Records)),
		zap.Int("summaries", len(result.Summaries)),
		zap.String("person", req.Person))
	response.OK(c, result)
}
