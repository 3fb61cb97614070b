package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/everwith_go_server/internal/api/middleware"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/response"
	"github.com/qs3c/everwith_go_server/internal/service"
)

type SubscriptionHandler struct {
	billingService *service.BillingService
}

func NewSubscriptionHandler(billingService *service.BillingService) *SubscriptionHandler {
	return &SubscriptionHandler{
		billingService: billingService,
	}
}

// NotifyPurchase 渠道支付成功通知
// POST /api/v1/purchases/notify
func (h *SubscriptionHandler) NotifyPurchase(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.PurchaseNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.billingService.ApplyPurchase(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownProduct),
			errors.Is(err, service.ErrInvalidPurchase),
			errors.Is(err, service.ErrInvalidTier):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Subscribe 创建订阅
// POST /api/v1/subscription/subscribe
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.billingService.Subscribe(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTier):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrAlreadySubscribed):
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Cancel 取消订阅
// POST /api/v1/subscription/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.billingService.Cancel(userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSub) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// GetStatus 当前订阅状态
// GET /api/v1/subscription/status
func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.billingService.GetStatus(userID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSub) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// GetPricing 定价信息（公开接口）
// GET /api/v1/subscription/pricing
func (h *SubscriptionHandler) GetPricing(c *gin.Context) {
	response.Success(c, h.billingService.GetPricing())
}
