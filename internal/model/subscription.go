package model

import (
	"time"
)

// 订阅状态
const (
	SubStatusActive    = "active"
	SubStatusCancelled = "cancelled"
	SubStatusExpired   = "expired"
	SubStatusTrial     = "trial"
)

// Subscription 订阅历史（只追加；同一用户最多一条 active/trial，由服务层保证）
type Subscription struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	UserID        int64      `gorm:"not null;index" json:"user_id"`
	Tier          string     `gorm:"size:20;not null" json:"tier"` // premium_monthly, premium_yearly
	Status        string     `gorm:"size:20;default:active;index" json:"status"`
	StartDate     time.Time  `gorm:"not null" json:"start_date"`
	EndDate       time.Time  `gorm:"not null;index" json:"end_date"`
	TrialEndDate  *time.Time `json:"trial_end_date,omitempty"`
	AutoRenew     bool       `gorm:"default:true" json:"auto_renew"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	TransactionID string     `gorm:"size:100" json:"transaction_id,omitempty"`
	ReceiptData   string     `gorm:"type:text" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// IsActive 订阅是否仍在有效期内
func (s *Subscription) IsActive(now time.Time) bool {
	if s.Status != SubStatusActive && s.Status != SubStatusTrial {
		return false
	}
	return now.Before(s.EndDate)
}
