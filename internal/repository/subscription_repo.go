package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/everwith_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) Update(sub *model.Subscription) error {
	return r.db.Save(sub).Error
}

// GetActive 取当前生效的订阅（active 或 trial），没有返回 nil
func (r *SubscriptionRepository) GetActive(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ? AND status IN ?", userID,
		[]string{model.SubStatusActive, model.SubStatusTrial}).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// CancelActive 将该用户所有 active/trial 订阅置为 cancelled（单活跃约束）
func (r *SubscriptionRepository) CancelActive(userID int64, now time.Time) error {
	return r.db.Model(&model.Subscription{}).
		Where("user_id = ? AND status IN ?", userID,
			[]string{model.SubStatusActive, model.SubStatusTrial}).
		Updates(map[string]interface{}{
			"status":       model.SubStatusCancelled,
			"auto_renew":   false,
			"cancelled_at": now,
		}).Error
}

// MarkExpired 将到期的 active/trial 订阅置为 expired，返回影响行数
func (r *SubscriptionRepository) MarkExpired(now time.Time) (int64, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("status IN ? AND end_date < ?",
			[]string{model.SubStatusActive, model.SubStatusTrial}, now).
		Update("status", model.SubStatusExpired)
	return result.RowsAffected, result.Error
}

// ListByUser 订阅历史
func (r *SubscriptionRepository) ListByUser(userID int64) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}
