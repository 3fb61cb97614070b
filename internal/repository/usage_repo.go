package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/everwith_go_server/internal/model"
)

type UsageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// GetOrCreateTracking 取当月计数记录，没有则懒创建
func (r *UsageRepository) GetOrCreateTracking(userID int64, month string) (*model.UsageTracking, error) {
	var tracking model.UsageTracking
	err := r.db.Where(model.UsageTracking{UserID: userID, Month: month}).
		FirstOrCreate(&tracking).Error
	if err != nil {
		return nil, err
	}
	return &tracking, nil
}

// Increment 当月计数 +1。(user_id, month) 撞唯一索引时原子自增，
// 并发调用不会丢计数。
func (r *UsageRepository) Increment(userID int64, month string, now time.Time) error {
	tracking := &model.UsageTracking{
		UserID:     userID,
		Month:      month,
		UsageCount: 1,
		UpdatedAt:  now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  now,
		}),
	}).Create(tracking).Error
}

// GetCount 当月计数（记录不存在按 0 处理）
func (r *UsageRepository) GetCount(userID int64, month string) (int, error) {
	var tracking model.UsageTracking
	err := r.db.Where("user_id = ? AND month = ?", userID, month).First(&tracking).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return tracking.UsageCount, nil
}

// CreateLog 记录一次授权消费。带凭证号的重复记录静默跳过，
// 返回 false 表示该凭证已消费过。
func (r *UsageRepository) CreateLog(entry *model.UsageLog) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoNothing: true,
	}).Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetLogByTransactionID 按外部凭证查消费记录
func (r *UsageRepository) GetLogByTransactionID(txnID string) (*model.UsageLog, error) {
	var entry model.UsageLog
	err := r.db.Where("transaction_id = ?", txnID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
