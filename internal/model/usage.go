package model

import (
	"time"
)

// UsageTracking 公平使用计数（每用户每自然月一条，只增不删，留作分析）
type UsageTracking struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;uniqueIndex:idx_usage_user_month" json:"user_id"`
	Month      string    `gorm:"size:7;not null;uniqueIndex:idx_usage_user_month" json:"month"` // YYYY-MM
	UsageCount int       `gorm:"default:0" json:"usage_count"`
	UpdatedAt  time.Time `json:"updated_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (UsageTracking) TableName() string {
	return "usage_tracking"
}

// UsageLog 单次授权消费记录。TransactionID 唯一索引支撑 Consume 幂等重放。
type UsageLog struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"not null;index" json:"user_id"`
	Mode          string    `gorm:"size:30;not null" json:"mode"`
	UsedCredit    bool      `gorm:"default:false" json:"used_credit"`
	CreditsUsed   int       `gorm:"default:0" json:"credits_used"`
	TransactionID *string   `gorm:"size:100;uniqueIndex" json:"transaction_id,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (UsageLog) TableName() string {
	return "usage_logs"
}
