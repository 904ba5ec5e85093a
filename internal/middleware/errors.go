package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/internal/certificate"
	"github.com/aura-webinar/studytime/internal/ingest"
	"github.com/aura-webinar/studytime/internal/reconcile"
	"github.com/aura-webinar/studytime/pkg/response"
	"github.com/aura-webinar/studytime/pkg/utils"
)

// StatusFor maps a handler error to an HTTP status and a client-facing message.
func StatusFor(err error) (int, string) {
	var (
		parseErr    *ingest.ParseError
		filterErr   *reconcile.FilterError
		externalErr *ingest.ExternalProcessError
		missingErr  *reconcile.MissingStandardTimeError
		groupErr    *reconcile.GroupError
		durationErr *utils.MalformedDurationError
		renderErr   *certificate.RenderError
	)
	switch {
	case errors.As(err, &parseErr), errors.As(err, &filterErr):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &externalErr):
		return http.StatusBadGateway, err.Error()
	case errors.As(err, &missingErr), errors.As(err, &groupErr), errors.As(err, &durationErr):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, certificate.ErrQueueUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	case errors.As(err, &renderErr):
		return http.StatusInternalServerError, "certificate rendering failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	}
	return http.StatusInternalServerError, "internal error"
}

// Errors writes the last error attached by a handler as a response envelope.
func Errors(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, msg := StatusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("request_id", c.GetString(ContextRequestID)), zap.Error(err))
		}
		response.Error(c, status, msg)
	}
}
