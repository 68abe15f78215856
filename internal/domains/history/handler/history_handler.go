package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/service"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/request"
	"pubops-backend/internal/shared/response"
	"pubops-backend/internal/shared/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HistoryHandler serves the read-only history endpoints
type HistoryHandler struct {
	service service.ServiceInterface
}

func NewHistoryHandler(service service.ServiceInterface) *HistoryHandler {
	return &HistoryHandler{service: service}
}

func parseEntity(c *gin.Context) (model.EntityType, int64, error) {
	entityType := model.EntityType(c.Query("entity_type"))
	if !entityType.Valid() {
		return "", 0, model.NewInvalidEntityType(string(entityType))
	}

	entityID, err := request.IDQuery(c, "entity_id")
	if err != nil {
		return "", 0, err
	}
	if entityID == 0 {
		return "", 0, apperror.Validation("ENTITY_ID_REQUIRED", "entity_id is required")
	}
	return entityType, entityID, nil
}

// ListHistory handles GET /history?entity_type=&entity_id=
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	entityType, entityID, err := parseEntity(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	page := utils.ParsePagination(c)
	records, total, err := h.service.List(c.Request.Context(), actor, entityType, entityID, page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, records, response.NewMeta(page.Page, page.Limit, total))
}

// ExportHistory handles GET /history/export and streams an .xlsx workbook
func (h *HistoryHandler) ExportHistory(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	entityType, entityID, err := parseEntity(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	f, err := h.service.Export(c.Request.Context(), actor, entityType, entityID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("history_%s_%d.xlsx", entityType, entityID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(apperror.Storage(err))
	}
}
