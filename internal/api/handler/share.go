package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/everwith_go_server/internal/api/middleware"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/response"
	"github.com/qs3c/everwith_go_server/internal/service"
)

type ShareHandler struct {
	shareService *service.ShareService
}

func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
	}
}

// Verify 核验分享并发奖
// POST /api/v1/share/verify
func (h *ShareHandler) Verify(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ShareVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.shareService.VerifyAndReward(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedPlatform),
			errors.Is(err, service.ErrMissingHashtag),
			errors.Is(err, service.ErrShareURLUnreachable):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrDuplicateShareURL):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrDailyShareLimit):
			response.RateLimitError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// GetStats 分享统计
// GET /api/v1/share/stats
func (h *ShareHandler) GetStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	stats, err := h.shareService.GetStats(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, stats)
}
