package model

import (
	"time"
)

// 订阅档位
const (
	TierFree           = "free"
	TierPremiumMonthly = "premium_monthly"
	TierPremiumYearly  = "premium_yearly"
)

// IsPremiumTier 是否为付费档位
func IsPremiumTier(tier string) bool {
	return tier == TierPremiumMonthly || tier == TierPremiumYearly
}

type User struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	Email        string  `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Name         string  `gorm:"size:100;not null" json:"name"`
	PasswordHash *string `gorm:"size:255" json:"-"`
	AvatarURL    string  `gorm:"size:500" json:"avatar_url"`
	GoogleID     *string `gorm:"column:google_id;size:100;uniqueIndex" json:"-"`

	// 权益状态：档位、积分余额、两条月度水位线
	SubscriptionTier      string     `gorm:"size:20;default:free;index" json:"subscription_tier"`
	Credits               int        `gorm:"default:0" json:"credits"`
	MonthlyCreditsResetAt *time.Time `json:"monthly_credits_reset_at,omitempty"`
	PremiumUsageThisMonth int        `gorm:"default:0" json:"premium_usage_this_month"`
	PremiumUsageResetAt   *time.Time `json:"premium_usage_reset_at,omitempty"`
	SubscriptionExpiresAt *time.Time `gorm:"index" json:"subscription_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
