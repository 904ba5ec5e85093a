package ingest

import (
	"github.com/gin-gonic/gin"

	"github.com/aura-webinar/studytime/pkg/response"
)

// Handler handles GET /tables.
type Handler struct {
	tables *StandardTables
}

// NewHandler creates a standard-table listing handler.
func NewHandler(tables *StandardTables) *Handler {
	return &Handler{tables: tables}
}

// ListTables returns the names accepted by the table form field.
func (h *Handler) ListTables(c *gin.Context) {
	names, err := h.tables.List()
	if err != nil {
		_ = c.Error(err)
		return
	}
	if names == nil {
		names = []string{}
	}
	response.OK(c, gin.H{"tables": names})
}
