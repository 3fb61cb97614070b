package dto

// ShareVerificationRequest 分享核验请求
type ShareVerificationRequest struct {
	Platform string   `json:"platform" binding:"required"`
	ShareURL string   `json:"share_url,omitempty"`
	Caption  string   `json:"caption,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
}

// ShareVerificationResponse 分享核验结果
type ShareVerificationResponse struct {
	Message          string `json:"message"`
	CreditsAwarded   int    `json:"credits_awarded"`
	NewCreditBalance int    `json:"new_credit_balance"`
	VerificationID   int64  `json:"verification_id"`
	AlreadyClaimed   bool   `json:"already_claimed"`
}

// ShareStats 用户分享统计
type ShareStats struct {
	TotalShares             int `json:"total_shares"`
	CreditsEarnedFromShares int `json:"credits_earned_from_shares"`
	VerifiedToday           int `json:"verified_today"`
	DailyLimit              int `json:"daily_limit"`
}
