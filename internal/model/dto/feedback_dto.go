package dto

import "time"

// FeedbackRequest 提交反馈
type FeedbackRequest struct {
	FeedbackType string                 `json:"feedback_type" binding:"required"`
	Subject      string                 `json:"subject" binding:"required"`
	Message      string                 `json:"message" binding:"required"`
	DeviceInfo   map[string]interface{} `json:"device_info,omitempty"`
	AppVersion   string                 `json:"app_version,omitempty"`
}

// FeedbackSubmitted 提交结果
type FeedbackSubmitted struct {
	Message    string `json:"message"`
	FeedbackID int64  `json:"feedback_id"`
	Status     string `json:"status"`
}

// FeedbackItem 反馈列表项
type FeedbackItem struct {
	ID           int64     `json:"id"`
	FeedbackType string    `json:"feedback_type"`
	Subject      string    `json:"subject"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
