package model

import (
	"time"
)

// 反馈类型
const (
	FeedbackTypeGeneral = "general"
	FeedbackTypeBug     = "bug"
	FeedbackTypeFeature = "feature"
	FeedbackTypeHelp    = "help"
)

const FeedbackStatusPending = "pending"

// Feedback 用户反馈与支持请求
type Feedback struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	Type       string    `gorm:"column:feedback_type;size:20;not null" json:"feedback_type"`
	Subject    string    `gorm:"size:200;not null" json:"subject"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	DeviceInfo string    `gorm:"type:text" json:"-"`
	AppVersion string    `gorm:"size:20" json:"app_version,omitempty"`
	Status     string    `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (Feedback) TableName() string {
	return "user_feedback"
}
