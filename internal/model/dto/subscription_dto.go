package dto

import "time"

// PurchaseNotificationRequest 渠道支付成功通知
type PurchaseNotificationRequest struct {
	ProductID     string                 `json:"product_id" binding:"required"`
	TransactionID string                 `json:"transaction_id" binding:"required"`
	PurchaseType  string                 `json:"purchase_type" binding:"required"` // subscription, credit_pack
	ProviderData  map[string]interface{} `json:"provider_data,omitempty"`
}

// PurchaseNotificationResponse 支付通知处理结果
type PurchaseNotificationResponse struct {
	SubscriptionTier string `json:"subscription_tier,omitempty"`
	CreditsAdded     int    `json:"credits_added,omitempty"`
	BonusCredits     int    `json:"bonus_credits,omitempty"`
	AlreadyProcessed bool   `json:"already_processed,omitempty"`
}

// SubscribeRequest 创建订阅请求（支付成功后）
type SubscribeRequest struct {
	Tier          string `json:"tier" binding:"required"`
	ReceiptData   string `json:"receipt_data" binding:"required"`
	TransactionID string `json:"transaction_id" binding:"required"`
}

// SubscribeResponse 创建订阅响应
type SubscribeResponse struct {
	SubscriptionID int64  `json:"subscription_id"`
	Tier           string `json:"tier"`
	Status         string `json:"status"`
	TrialDays      int    `json:"trial_days"`
}

// SubscriptionStatusResponse 当前订阅状态
type SubscriptionStatusResponse struct {
	ID           int64      `json:"id"`
	Tier         string     `json:"tier"`
	Status       string     `json:"status"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	IsActive     bool       `json:"is_active"`
	TrialEndDate *time.Time `json:"trial_end_date,omitempty"`
	AutoRenew    bool       `json:"auto_renew"`
}

// CancelResponse 取消订阅响应
type CancelResponse struct {
	Message string    `json:"message"`
	EndDate time.Time `json:"end_date"`
}

// PricingResponse 定价信息
type PricingResponse struct {
	Subscriptions map[string]PlanPricing `json:"subscriptions"`
	CreditPacks   []CreditPackPricing    `json:"credit_packs"`
}

// PlanPricing 订阅定价
type PlanPricing struct {
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	TrialDays int     `json:"trial_days"`
}

// CreditPackPricing 积分包定价
type CreditPackPricing struct {
	ProductID string `json:"product_id"`
	Credits   int    `json:"credits"`
}
