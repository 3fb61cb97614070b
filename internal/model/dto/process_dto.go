package dto

// ProcessRequest 图片处理请求
type ProcessRequest struct {
	Mode          string   `json:"mode" binding:"required"`
	SourceURLs    []string `json:"source_urls" binding:"required,min=1"`
	Prompt        string   `json:"prompt,omitempty"`
	TransactionID string   `json:"transaction_id,omitempty"`
}

// ProcessResponse 图片处理响应
type ProcessResponse struct {
	JobID            int64        `json:"job_id"`
	Status           string       `json:"status"`
	UsedCredit       bool         `json:"used_credit"`
	CreditsUsed      int          `json:"credits_used"`
	RemainingCredits int          `json:"remaining_credits"`
	Usage            *UsageStatus `json:"usage,omitempty"`
}

// JobStatusResponse 任务状态
type JobStatusResponse struct {
	JobID          int64  `json:"job_id"`
	Status         string `json:"status"`
	ResultURL      string `json:"result_url,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
	ElapsedSeconds int    `json:"elapsed_seconds,omitempty"`
}
