package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/everwith_go_server/internal/api/middleware"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/response"
	"github.com/qs3c/everwith_go_server/internal/service"
)

type ProcessHandler struct {
	processingService *service.ProcessingService
}

func NewProcessHandler(processingService *service.ProcessingService) *ProcessHandler {
	return &ProcessHandler{
		processingService: processingService,
	}
}

// Submit 提交图片处理任务
// POST /api/v1/process
func (h *ProcessHandler) Submit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.processingService.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConsumeConflict):
			response.ConflictError(c, err.Error())
		case errors.Is(err, service.ErrInsufficientCredits):
			response.CreditError(c, err.Error())
		case errors.Is(err, service.ErrSoftLimitReached):
			response.RateLimitError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// GetJob 查询任务状态
// GET /api/v1/jobs/:id
func (h *ProcessHandler) GetJob(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid job id")
		return
	}

	resp, err := h.processingService.GetJob(userID, jobID)
	if err != nil {
		response.NotFoundError(c, "job not found")
		return
	}

	response.Success(c, resp)
}

// ListJobs 任务历史
// GET /api/v1/jobs?page=1&page_size=20
func (h *ProcessHandler) ListJobs(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	jobs, total, err := h.processingService.ListJobs(userID, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, jobs)
}
