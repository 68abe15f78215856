package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pubops-backend/internal/domains/access/model"
	"pubops-backend/internal/domains/access/service"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/request"
	"pubops-backend/internal/shared/response"
)

// AccessHandler exposes the ownership mapping to administrators
type AccessHandler struct {
	service service.ServiceInterface
}

func NewAccessHandler(service service.ServiceInterface) *AccessHandler {
	return &AccessHandler{service: service}
}

// GetGrants handles GET /users/:id/access
func (h *AccessHandler) GetGrants(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	userID, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	grants, err := h.service.Grants(c.Request.Context(), actor, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, grants)
}

// ReplaceGrants handles PUT /users/:id/access/:kind
func (h *AccessHandler) ReplaceGrants(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	userID, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	kind := model.Kind(c.Param("kind"))
	if !kind.Valid() {
		_ = c.Error(model.NewInvalidKind(c.Param("kind")))
		return
	}

	var req model.ReplaceGrantsRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := apperror.Validate(req); err != nil {
		_ = c.Error(err)
		return
	}

	grants, err := h.service.ReplaceGrants(c.Request.Context(), actor, userID, kind, req.ResourceIDs)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, grants)
}
