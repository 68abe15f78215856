package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pubops-backend/internal/domains/imprint/model"
	"pubops-backend/internal/domains/imprint/service"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/request"
	"pubops-backend/internal/shared/response"
	"pubops-backend/internal/shared/utils"
)

type ImprintHandler struct {
	service service.ServiceInterface
}

func NewImprintHandler(service service.ServiceInterface) *ImprintHandler {
	return &ImprintHandler{service: service}
}

// Find handles GET /imprints?q=&active=&page=&limit=
func (h *ImprintHandler) Find(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	filter := model.Filter{
		Q:    strings.TrimSpace(c.Query("q")),
		Page: utils.ParsePagination(c),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			_ = c.Error(apperror.Validation("INVALID_QUERY", "active must be true or false"))
			return
		}
		filter.Active = &active
	}

	imprints, total, err := h.service.Find(c.Request.Context(), actor, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, imprints, response.NewMeta(filter.Page.Page, filter.Page.Limit, total))
}

// Get handles GET /imprints/:id
func (h *ImprintHandler) Get(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	imp, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, imp)
}

// Create handles POST /imprints
func (h *ImprintHandler) Create(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.CreateImprintRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	imp, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, imp)
}

// Patch handles PATCH /imprints/:id
func (h *ImprintHandler) Patch(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateImprintRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	imp, err := h.service.Patch(c.Request.Context(), actor, id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, imp)
}

// Remove handles DELETE /imprints/:id
func (h *ImprintHandler) Remove(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	id, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.Remove(c.Request.Context(), actor, id); err != nil {
		_ = c.Error(err)
		return
	}
	response.NoContent(c)
}
