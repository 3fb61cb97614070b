package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/everwith_go_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByGoogleID(googleID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("google_id = ?", googleID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// DeductCredits 条件扣减积分：余额不足时不落库，返回 false。
// 单条 UPDATE 保证并发下余额不会穿底。
func (r *UserRepository) DeductCredits(id int64, cost int) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND credits >= ?", id, cost).
		Update("credits", gorm.Expr("credits - ?", cost))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AddCredits 增加积分
func (r *UserRepository) AddCredits(id int64, amount int) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("credits", gorm.Expr("credits + ?", amount)).Error
}

// IncrementPremiumUsage 会员月用量 +1，软限制内才生效
func (r *UserRepository) IncrementPremiumUsage(id int64, softLimit int) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND premium_usage_this_month < ?", id, softLimit).
		Update("premium_usage_this_month", gorm.Expr("premium_usage_this_month + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementPremiumUsage 会员月用量回退（入队失败时的补偿）
func (r *UserRepository) DecrementPremiumUsage(id int64) error {
	return r.db.Model(&model.User{}).
		Where("id = ? AND premium_usage_this_month > 0", id).
		Update("premium_usage_this_month", gorm.Expr("premium_usage_this_month - 1")).Error
}

// ResetMonthlyCredits 免费档月度重置：余额覆盖为固定额度，水位线推进到 now。
// WHERE 条件以水位线为准，同一周期内重复调用是无操作，并发下不会重复发放。
func (r *UserRepository) ResetMonthlyCredits(id int64, amount int, now, periodStart time.Time) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND subscription_tier = ? AND (monthly_credits_reset_at IS NULL OR monthly_credits_reset_at < ?)",
			id, model.TierFree, periodStart).
		Updates(map[string]interface{}{
			"credits":                  amount,
			"monthly_credits_reset_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ResetPremiumUsage 会员月用量重置，同样以水位线保证幂等
func (r *UserRepository) ResetPremiumUsage(id int64, now, periodStart time.Time) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND (premium_usage_reset_at IS NULL OR premium_usage_reset_at < ?)", id, periodStart).
		Updates(map[string]interface{}{
			"premium_usage_this_month": 0,
			"premium_usage_reset_at":   now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DowngradeExpired 将订阅已过期的用户降回免费档，返回影响行数
func (r *UserRepository) DowngradeExpired(now time.Time) (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("subscription_tier <> ? AND subscription_expires_at IS NOT NULL AND subscription_expires_at < ?",
			model.TierFree, now).
		Update("subscription_tier", model.TierFree)
	return result.RowsAffected, result.Error
}

// ListIDs 分页取用户 ID（对账任务用）
func (r *UserRepository) ListIDs(afterID int64, limit int) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.User{}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}
