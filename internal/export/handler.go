package export

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/internal/reconcile"
	"github.com/aura-webinar/studytime/pkg/utils"
)

// ContentTypeCSV is sent with CSV downloads.
const ContentTypeCSV = "text/csv; charset=utf-8"

// FileName is the default save name of a CSV export.
func FileName(person string) string {
	if person == "" {
		return "study_time_summary.csv"
	}
	return utils.SafeFileComponent(person) + "_study_time_summary.csv"
}

// Attachment formats a Content-Disposition value; non-ASCII names are RFC 2231 encoded.
func Attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

// Handler handles POST /exports/csv.
type Handler struct {
	source reconcile.BatchSource
	rules  reconcile.Rules
	logger *zap.Logger
}

// NewHandler creates an export handler.
func NewHandler(source reconcile.BatchSource, rules reconcile.Rules, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{source: source, rules: rules, logger: logger}
}

// CSV reconciles the uploads with the person/mark filters and returns the table as a download.
func (h *Handler) CSV(c *gin.Context) {
	batch, err := h.source.FromRequest(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	req, err := reconcile.FormRequest(c, batch, h.rules)
	if err != nil {
		_ = c.Error(err)
		return
	}
	result, err := reconcile.Reconcile(req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	data, err := CSV(result.Summaries)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.logger.Debug("csv exported", zap.Int("rows", len(result.Summaries)), zap.Int("bytes", len(data)))
	c.Header("Content-Disposition", Attachment(FileName(req.Person)))
	c.Data(http.StatusOK, ContentTypeCSV, data)
}
