package model

import (
	"time"
)

// ProcessingJob 图片处理任务
type ProcessingJob struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	UserID         int64      `gorm:"not null;index" json:"user_id"`
	Mode           string     `gorm:"size:30;not null" json:"mode"`
	SourceURLs     string     `gorm:"size:2000;not null" json:"source_urls"` // 逗号分隔的源图 URL
	Prompt         string     `gorm:"size:1000" json:"prompt,omitempty"`
	Status         string     `gorm:"size:20;default:queued;index" json:"status"` // queued, processing, completed, failed
	ResultURL      string     `gorm:"size:500" json:"result_url,omitempty"`
	ErrorMessage   string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ElapsedSeconds int        `json:"elapsed_seconds,omitempty"`
}

func (ProcessingJob) TableName() string {
	return "processing_jobs"
}
