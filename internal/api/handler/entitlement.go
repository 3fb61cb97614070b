package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/everwith_go_server/internal/api/middleware"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/response"
	"github.com/qs3c/everwith_go_server/internal/service"
)

type EntitlementHandler struct {
	entitlementService *service.EntitlementService
}

func NewEntitlementHandler(entitlementService *service.EntitlementService) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementService: entitlementService,
	}
}

// CheckAccess 准入检查（只读，不扣账）
// POST /api/v1/credits/check-access
func (h *EntitlementHandler) CheckAccess(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.AccessCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.entitlementService.CheckAccess(userID, req.Mode)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}

// Consume 消费一次使用权
// POST /api/v1/credits/use
func (h *EntitlementHandler) Consume(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreditUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.entitlementService.Consume(userID, req.Mode, req.TransactionID)
	if err != nil {
		switch {
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

// GetCosts 各服务积分消耗表
// GET /api/v1/credits/costs
func (h *EntitlementHandler) GetCosts(c *gin.Context) {
	response.Success(c, h.entitlementService.GetCreditCosts())
}

// GetSummary 积分余额与流水汇总
// GET /api/v1/credits/summary
func (h *EntitlementHandler) GetSummary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	summary, err := h.entitlementService.GetCreditSummary(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, summary)
}
