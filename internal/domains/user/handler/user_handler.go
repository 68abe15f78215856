package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pubops-backend/internal/domains/user/service"
	"pubops-backend/internal/shared/request"
	"pubops-backend/internal/shared/response"
)

type UserHandler struct {
	service service.ServiceInterface
}

func NewUserHandler(service service.ServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	actor, err := request.Actor(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	me, err := h.service.Me(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, me)
}
