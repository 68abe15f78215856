package middleware

import (
	"github.com/gin-gonic/gin"

	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/response"
)

// AdminMiddleware rejects actors without the admin role. Must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			return
		}

		if !actor.IsAdmin() {
			_ = c.Error(apperror.AdminRequired())
			c.Abort()
			return
		}

		c.Next()
	}
}
