package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pubops-backend/internal/domains/release/model"
	"pubops-backend/internal/domains/release/service"
	"pubops-backend/internal/shared/request"
	"pubops-backend/internal/shared/response"
)

type ReleaseHandler struct {
	service service.ServiceInterface
}

func NewReleaseHandler(service service.ServiceInterface) *ReleaseHandler {
	return &ReleaseHandler{service: service}
}

// ListByBook handles GET /books/:id/releases
func (h *ReleaseHandler) ListByBook(c *gin.Context) {
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

	releases, err := h.service.ListByBook(c.Request.Context(), actor, bookID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, releases)
}

// Create handles POST /books/:id/releases
func (h *ReleaseHandler) Create(c *gin.Context) {
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

	var req model.CreateReleaseRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	rel, err := h.service.Create(c.Request.Context(), actor, bookID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, rel)
}

// Get handles GET /releases/:id
func (h *ReleaseHandler) Get(c *gin.Context) {
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

	rel, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, rel)
}

// Patch handles PATCH /releases/:id
func (h *ReleaseHandler) Patch(c *gin.Context) {
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

	var req model.UpdateReleaseRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	rel, err := h.service.Patch(c.Request.Context(), actor, id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, rel)
}

// Remove handles DELETE /releases/:id
func (h *ReleaseHandler) Remove(c *gin.Context) {
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

// AddPrice handles POST /releases/:id/prices
func (h *ReleaseHandler) AddPrice(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	releaseID, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.CreatePriceRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	price, err := h.service.AddPrice(c.Request.Context(), actor, releaseID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, price)
}

// PatchPrice handles PATCH /releases/:id/prices/:price_id
func (h *ReleaseHandler) PatchPrice(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	releaseID, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	priceID, err := request.IDParam(c, "price_id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdatePriceRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	price, err := h.service.PatchPrice(c.Request.Context(), actor, releaseID, priceID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, price)
}

// RemovePrice handles DELETE /releases/:id/prices/:price_id
func (h *ReleaseHandler) RemovePrice(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	releaseID, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	priceID, err := request.IDParam(c, "price_id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.RemovePrice(c.Request.Context(), actor, releaseID, priceID); err != nil {
		_ = c.Error(err)
		return
	}
	response.NoContent(c)
}
