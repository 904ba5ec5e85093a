package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextRequestID is the gin context key the request-id middleware fills.
const ContextRequestID = "request_id"

// Body is the JSON envelope every API response uses. RequestID is echoed so a
// failed upload can be matched to its server log line.
type Body struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func write(c *gin.Context, status int, b Body) {
	b.RequestID = c.GetString(ContextRequestID)
	c.JSON(status, b)
}

// OK sends 200 with data.
func OK(c *gin.Context, data any) {
	write(c, http.StatusOK, Body{Success: true, Data: data})
}

// Accepted sends 202 for a queued certificate job.
func Accepted(c *gin.Context, data any) {
	write(c, http.StatusAccepted, Body{Success: true, Data: data})
}

// Error sends status with a client-safe message.
func Error(c *gin.Context, status int, msg string) {
	write(c, status, Body{Error: msg})
}

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, msg)
}
