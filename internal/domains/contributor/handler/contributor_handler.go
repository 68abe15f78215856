package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pubops-backend/internal/domains/contributor/model"
	"pubops-backend/internal/domains/contributor/service"
	"pubops-backend/internal/shared/request"
	"pubops-backend/internal/shared/response"
	"pubops-backend/internal/shared/utils"
)

type ContributorHandler struct {
	service service.ServiceInterface
}

func NewContributorHandler(service service.ServiceInterface) *ContributorHandler {
	return &ContributorHandler{service: service}
}

// Find handles GET /contributors?q=
func (h *ContributorHandler) Find(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	filter := model.Filter{Q: strings.TrimSpace(c.Query("q")), Page: utils.ParsePagination(c)}
	contributors, total, err := h.service.Find(c.Request.Context(), actor, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, contributors, response.NewMeta(filter.Page.Page, filter.Page.Limit, total))
}

// Get handles GET /contributors/:id
func (h *ContributorHandler) Get(c *gin.Context) {
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

	contributor, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, contributor)
}

// Create handles POST /contributors
func (h *ContributorHandler) Create(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.CreateContributorRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	contributor, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, contributor)
}

// Patch handles PATCH /contributors/:id
func (h *ContributorHandler) Patch(c *gin.Context) {
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

	var req model.UpdateContributorRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	contributor, err := h.service.Patch(c.Request.Context(), actor, id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, contributor)
}

// Remove handles DELETE /contributors/:id
func (h *ContributorHandler) Remove(c *gin.Context) {
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

// ListRoles handles GET /books/:id/contributors
func (h *ContributorHandler) ListRoles(c *gin.Context) {
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

	roles, err := h.service.ListRoles(c.Request.Context(), actor, bookID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// AssignRole handles POST /books/:id/contributors
func (h *ContributorHandler) AssignRole(c *gin.Context) {
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

	var req model.CreateRoleRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	role, err := h.service.AssignRole(c.Request.Context(), actor, bookID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, role)
}

// PatchRole handles PATCH /contributor-roles/:id
func (h *ContributorHandler) PatchRole(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	roleID, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateRoleRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	role, err := h.service.PatchRole(c.Request.Context(), actor, roleID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// RemoveRole handles DELETE /contributor-roles/:id
func (h *ContributorHandler) RemoveRole(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	roleID, err := request.IDParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.RemoveRole(c.Request.Context(), actor, roleID); err != nil {
		_ = c.Error(err)
		return
	}
	response.NoContent(c)
}

// Consolidate handles POST /admin/contributors/consolidate. The merge runs
// in the worker; the response carries the task id.
func (h *ContributorHandler) Consolidate(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.ConsolidateRequest
	if err := request.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	taskID, err := h.service.EnqueueConsolidation(c.Request.Context(), actor, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"task_id": taskID, "dry_run": req.DryRun})
}
