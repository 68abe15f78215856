// Package request holds the small parsing helpers shared by handlers.
// Every helper returns an *apperror.Error so handlers can hand it to c.Error.
package request

import (
	"strings"

	"github.com/gin-gonic/gin"

	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/middleware"
	"pubops-backend/internal/shared/utils"
)

// Actor returns the authenticated actor of the request
func Actor(c *gin.Context) (shared.Actor, error) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return shared.Actor{}, apperror.Permission("UNAUTHENTICATED", "Authentication required")
	}
	return actor, nil
}

// IDParam parses a positive int64 path parameter
func IDParam(c *gin.Context, name string) (int64, error) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		return 0, apperror.InvalidID(name)
	}
	return id, nil
}

// IDQuery parses an optional positive int64 query parameter. Absent yields 0.
func IDQuery(c *gin.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	id, ok := utils.ParseID(raw)
	if !ok {
		return 0, apperror.InvalidID(name)
	}
	return id, nil
}

// BindJSON decodes the body into dst
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperror.Validation("INVALID_REQUEST_BODY", "Invalid request payload").WithDetail("reason", err.Error())
	}
	return nil
}
