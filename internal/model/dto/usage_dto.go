package dto

// UsageStatus 公平使用状态（软限流，仅提示不拦截）
type UsageStatus struct {
	UsageCount                int     `json:"usage_count"`
	SoftLimit                 int     `json:"soft_limit"`
	CooldownLimit             int     `json:"cooldown_limit"`
	InCooldown                bool    `json:"in_cooldown"`
	AtSoftLimit               bool    `json:"at_soft_limit"`
	ApproachingLimit          bool    `json:"approaching_limit"`
	Message                   string  `json:"message,omitempty"`
	ProcessingSpeedMultiplier float64 `json:"processing_speed_multiplier"`
	EstimatedWaitSeconds      int     `json:"estimated_wait_seconds,omitempty"`
	RemainingUntilSoftLimit   int     `json:"remaining_until_soft_limit"`
	RemainingUntilCooldown    int     `json:"remaining_until_cooldown"`
}
