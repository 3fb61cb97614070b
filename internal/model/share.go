package model

import (
	"time"
)

// 分享核验状态
const (
	ShareStatusPending  = "pending"
	ShareStatusVerified = "verified"
	ShareStatusRejected = "rejected"
)

// ShareEvent 分享事件。同一用户同一 share_url 终身只奖励一次。
type ShareEvent struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	UserID             int64      `gorm:"not null;index;uniqueIndex:idx_share_user_url" json:"user_id"`
	Platform           string     `gorm:"size:20;not null" json:"platform"`
	ShareURL           *string    `gorm:"size:500;uniqueIndex:idx_share_user_url" json:"share_url,omitempty"`
	Caption            string     `gorm:"type:text" json:"caption,omitempty"`
	Hashtags           string     `gorm:"size:500" json:"hashtags,omitempty"` // 小写、逗号分隔
	RewardCredits      int        `gorm:"default:1" json:"reward_credits"`
	VerificationStatus string     `gorm:"size:20;default:pending;index" json:"verification_status"`
	VerificationNotes  string     `gorm:"size:255" json:"-"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
}

func (ShareEvent) TableName() string {
	return "share_events"
}

// UserStats 用户分享聚合统计
type UserStats struct {
	ID                      int64     `gorm:"primaryKey" json:"id"`
	UserID                  int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	TotalShares             int       `gorm:"default:0" json:"total_shares"`
	CreditsEarnedFromShares int       `gorm:"default:0" json:"credits_earned_from_shares"`
	UpdatedAt               time.Time `json:"updated_at"`
	CreatedAt               time.Time `json:"created_at"`
}

func (UserStats) TableName() string {
	return "user_stats"
}
