package dto

import "time"

// AccessCheckRequest 服务准入检查请求
type AccessCheckRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// AccessCheckResponse 服务准入检查结果
type AccessCheckResponse struct {
	HasAccess         bool   `json:"has_access"`
	RemainingCredits  int    `json:"remaining_credits"`
	FreeUsesRemaining int    `json:"free_uses_remaining"`
	SubscriptionTier  string `json:"subscription_tier"`
	CreditsNeeded     int    `json:"credits_needed"`
	Message           string `json:"message,omitempty"`
}

// CreditUsageRequest 消费请求。TransactionID 选填，填了即可安全重试。
type CreditUsageRequest struct {
	Mode          string `json:"mode" binding:"required"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// CreditUsageResponse 消费结果
type CreditUsageResponse struct {
	Success           bool   `json:"success"`
	UsedCredit        bool   `json:"used_credit"`
	CreditsUsed       int    `json:"credits_used"`
	RemainingCredits  int    `json:"remaining_credits"`
	FreeUsesRemaining int    `json:"free_uses_remaining"`
	Message           string `json:"message,omitempty"`
}

// CreditSummary 积分余额与流水汇总
type CreditSummary struct {
	CreditsRemaining int        `json:"credits_remaining"`
	TotalPurchased   int        `json:"total_purchased"`
	TotalUsed        int        `json:"total_used"`
	LastPurchaseDate *time.Time `json:"last_purchase_date,omitempty"`
}

// CreditCostsResponse 各服务积分消耗表
type CreditCostsResponse struct {
	ServiceCosts         map[string]int    `json:"service_costs"`
	Descriptions         map[string]string `json:"descriptions"`
	InitialSignupCredits int               `json:"initial_signup_credits"`
	PremiumUnlimited     bool              `json:"premium_unlimited"`
}
