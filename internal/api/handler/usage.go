package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/everwith_go_server/internal/api/middleware"
	"github.com/qs3c/everwith_go_server/internal/pkg/response"
	"github.com/qs3c/everwith_go_server/internal/service"
)

type UsageHandler struct {
	fairUseService *service.FairUseService
}

func NewUsageHandler(fairUseService *service.FairUseService) *UsageHandler {
	return &UsageHandler{
		fairUseService: fairUseService,
	}
}

// GetStatus 当月用量与降速状态
// GET /api/v1/usage/status
func (h *UsageHandler) GetStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	status, err := h.fairUseService.GetStatus(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, status)
}
