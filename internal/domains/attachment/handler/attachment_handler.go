package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pubops-backend/internal/domains/attachment/model"
	"pubops-backend/internal/domains/attachment/service"
	"pubops-backend/internal/shared/request"
	"pubops-backend/internal/shared/response"
)

// multipartOverhead leaves room for the form boundaries around the file
const multipartOverhead = 1 << 20

type AttachmentHandler struct {
	service  service.ServiceInterface
	maxBytes int64
}

func NewAttachmentHandler(service service.ServiceInterface, maxBytes int64) *AttachmentHandler {
	if maxBytes <= 0 {
		maxBytes = model.DefaultMaxUploadBytes
	}
	return &AttachmentHandler{service: service, maxBytes: maxBytes}
}

// ListByBook handles GET /books/:id/attachments
func (h *AttachmentHandler) ListByBook(c *gin.Context) {
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

	attachments, err := h.service.ListByBook(c.Request.Context(), actor, bookID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, attachments)
}

// Upload handles POST /books/:id/attachments (multipart, field "file")
func (h *AttachmentHandler) Upload(c *gin.Context) {
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

	if c.Request.ContentLength > h.maxBytes+multipartOverhead {
		_ = c.Error(model.NewFileTooLarge(c.Request.ContentLength, h.maxBytes))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(model.NewFileTooLarge(c.Request.ContentLength, h.maxBytes))
			return
		}
		_ = c.Error(model.NewMissingFile())
		return
	}

	file, err := header.Open()
	if err != nil {
		_ = c.Error(model.NewMissingFile())
		return
	}
	defer file.Close()

	attachment, err := h.service.Upload(c.Request.Context(), actor, bookID, model.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, attachment)
}

// Download handles GET /attachments/:id/content
func (h *AttachmentHandler) Download(c *gin.Context) {
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

	attachment, body, err := h.service.Open(c.Request.Context(), actor, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, attachment.SizeBytes, attachment.ContentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, attachment.FileName),
	})
}

// Remove handles DELETE /attachments/:id
func (h *AttachmentHandler) Remove(c *gin.Context) {
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
