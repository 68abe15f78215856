package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/response"
	"pubops-backend/pkg/jwt"
)

const actorKey = "actor"

// TokenValidator is satisfied by *jwt.Manager
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware verifies the bearer token and resolves the request actor
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := validator.ValidateAccessToken(parts[1])
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("token rejected")
			response.Unauthorized(c, "invalid token")
			return
		}

		SetActor(c, shared.Actor{
			ID:    claims.UserID,
			Email: claims.Email,
			Roles: claims.Roles,
		})
		c.Next()
	}
}

func SetActor(c *gin.Context, actor shared.Actor) {
	c.Set(actorKey, actor)
}

// CurrentActor returns the actor resolved by AuthMiddleware
func CurrentActor(c *gin.Context) (shared.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return shared.Actor{}, false
	}
	actor, ok := v.(shared.Actor)
	return actor, ok
}
