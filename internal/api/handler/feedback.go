package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/everwith_go_server/internal/api/middleware"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/response"
	"github.com/qs3c/everwith_go_server/internal/service"
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
	}
}

// Submit 提交反馈
// POST /api/v1/feedback/submit
func (h *FeedbackHandler) Submit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.feedbackService.Submit(userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFeedbackType) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, result)
}

// List 查看自己提交过的反馈
// GET /api/v1/feedback
func (h *FeedbackHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.feedbackService.List(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, items)
}
