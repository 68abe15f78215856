package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pubops-backend/internal/domains/marketing/model"
	"pubops-backend/internal/domains/marketing/service"
	"pubops-backend/internal/shared/request"
	"pubops-backend/internal/shared/response"
)

type ChecklistHandler struct {
	service service.ServiceInterface
}

func NewChecklistHandler(service service.ServiceInterface) *ChecklistHandler {
	return &ChecklistHandler{service: service}
}

// ListByBook handles GET /books/:id/checklist
func (h *ChecklistHandler) ListByBook(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	bookID, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	items, err := h.service.ListByBook(c.Request.Context(), actor, bookID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Create handles POST /books/:id/checklist
func (h *ChecklistHandler) Create(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	bookID, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.CreateItemRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	item, err := h.service.Create(c.Request.Context(), actor, bookID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, item)
}

// Patch handles PATCH /checklist-items/:id
func (h *ChecklistHandler) Patch(c *gin.Context) {
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

	var req model.UpdateItemRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	item, err := h.service.Patch(c.Request.Context(), actor, id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Remove handles DELETE /checklist-items/:id
func (h *ChecklistHandler) Remove(c *gin.Context) {
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
