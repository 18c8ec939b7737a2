package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

// ErrorHandler renders the last error attached to the context as the
// standard envelope. Internal details are only exposed when
// exposeInternal is set.
func ErrorHandler(exposeInternal bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		appErr := apperrors.As(c.Errors.Last().Err)
		status := appErr.StatusCode()

		event := log.Warn()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Err(appErr).
			Str("request_id", requestID).
			Str("code", appErr.Code.String()).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Str("client_ip", c.ClientIP()).
			Msg("Request error")

		if c.Writer.Written() {
			return
		}

		message := appErr.Message
		if appErr.Code == apperrors.ErrInternal && exposeInternal && appErr.Err != nil {
			message = appErr.Err.Error()
		}

		var fields interface{}
		if len(appErr.Fields) > 0 {
			fields = appErr.Fields
		}
		httputil.RespondWithError(c, status, appErr.Code.String(), message, fields)
	}
}
