package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/everwith_go_server/internal/model"
)

type ShareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) Create(event *model.ShareEvent) error {
	return r.db.Create(event).Error
}

// ExistsByUserAndURL 该用户是否提交过这条链接（终身去重）
func (r *ShareRepository) ExistsByUserAndURL(userID int64, shareURL string) (bool, error) {
	var count int64
	err := r.db.Model(&model.ShareEvent{}).
		Where("user_id = ? AND share_url = ?", userID, shareURL).
		Count(&count).Error
	return count > 0, err
}

// CountVerifiedSince 统计 since 之后已核验的分享数（当日上限用）
func (r *ShareRepository) CountVerifiedSince(userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.ShareEvent{}).
		Where("user_id = ? AND verification_status = ? AND created_at >= ?",
			userID, model.ShareStatusVerified, since).
		Count(&count).Error
	return count, err
}

// LatestVerified 最近一条已核验分享（冷却窗口判断用）
func (r *ShareRepository) LatestVerified(userID int64) (*model.ShareEvent, error) {
	var event model.ShareEvent
	err := r.db.Where("user_id = ? AND verification_status = ?", userID, model.ShareStatusVerified).
		Order("created_at DESC").
		First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// UpsertStats 聚合统计：分享数 +1、累计积分 +credits
func (r *ShareRepository) UpsertStats(userID int64, credits int, now time.Time) error {
	stats := &model.UserStats{
		UserID:                  userID,
		TotalShares:             1,
		CreditsEarnedFromShares: credits,
		UpdatedAt:               now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_shares":               gorm.Expr("total_shares + 1"),
			"credits_earned_from_shares": gorm.Expr("credits_earned_from_shares + ?", credits),
			"updated_at":                 now,
		}),
	}).Create(stats).Error
}

// GetStats 读取聚合统计（无记录返回零值）
func (r *ShareRepository) GetStats(userID int64) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.db.Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &model.UserStats{UserID: userID}, nil
		}
		return nil, err
	}
	return &stats, nil
}
