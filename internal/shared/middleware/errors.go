package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/response"
)

// ErrorHandler turns errors pushed with c.Error into the response envelope.
// Register it before the handlers so its post-Next step runs last.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := apperror.Translate(c.Errors.Last().Err)

		event := log.Warn()
		if appErr.Kind == apperror.KindStorage {
			event = log.Error()
		}
		event.
			Err(appErr.Err).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("kind", string(appErr.Kind)).
			Str("code", appErr.Code).
			Str("path", c.Request.URL.Path).
			Msg(appErr.Message)

		if c.Writer.Written() {
			return
		}

		var details interface{}
		if len(appErr.Details) > 0 {
			details = appErr.Details
		}
		response.ErrorWithDetails(c, appErr.HTTPStatus(), appErr.Code, appErr.Message, details)
	}
}
