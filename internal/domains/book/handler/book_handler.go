package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pubops-backend/internal/domains/book/model"
	"pubops-backend/internal/domains/book/service"
	"pubops-backend/internal/shared/request"
	"pubops-backend/internal/shared/response"
	"pubops-backend/internal/shared/utils"
)

type BookHandler struct {
	service service.ServiceInterface
}

func NewBookHandler(service service.ServiceInterface) *BookHandler {
	return &BookHandler{service: service}
}

// Find handles GET /books?fk_imprint=&status=&q=&page=&limit=
func (h *BookHandler) Find(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	imprintID, err := request.IDQuery(c, "fk_imprint")
	if err != nil {
		_ = c.Error(err)
		return
	}

	filter := model.Filter{
		ImprintID: imprintID,
		Status:    model.Status(c.Query("status")),
		Q:         strings.TrimSpace(c.Query("q")),
		Page:      utils.ParsePagination(c),
	}

	books, total, err := h.service.Find(c.Request.Context(), actor, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, books, response.NewMeta(filter.Page.Page, filter.Page.Limit, total))
}

// Get handles GET /books/:id
func (h *BookHandler) Get(c *gin.Context) {
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

	book, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// Create handles POST /books
func (h *BookHandler) Create(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.CreateBookRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	book, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, book)
}

// Patch handles PATCH /books/:id
func (h *BookHandler) Patch(c *gin.Context) {
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

	var req model.UpdateBookRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	book, err := h.service.Patch(c.Request.Context(), actor, id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// Remove handles DELETE /books/:id
func (h *BookHandler) Remove(c *gin.Context) {
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
