package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/everwith_go_server/internal/model"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(feedback *model.Feedback) error {
	return r.db.Create(feedback).Error
}

// ListByUser 按提交时间倒序返回该用户的反馈
func (r *FeedbackRepository) ListByUser(userID int64) ([]model.Feedback, error) {
	var items []model.Feedback
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}
