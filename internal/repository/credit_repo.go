package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/everwith_go_server/internal/model"
)

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

// Append 追加一条流水。带 transaction_id 的记录撞唯一索引时静默跳过，
// 返回 false 表示该凭证已入账过（幂等重放）。
func (r *CreditRepository) Append(entry *model.CreditTransaction) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoNothing: true,
	}).Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *CreditRepository) GetByTransactionID(txnID string) (*model.CreditTransaction, error) {
	var entry model.CreditTransaction
	err := r.db.Where("transaction_id = ?", txnID).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SumByUser 流水合计（对账用；正常情况下应接近 users.credits）
func (r *CreditRepository) SumByUser(userID int64) (int64, error) {
	var sum *int64
	err := r.db.Model(&model.CreditTransaction{}).
		Where("user_id = ?", userID).
		Select("SUM(credits)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// SumByUserAndType 按流水类型合计绝对值
func (r *CreditRepository) SumByUserAndType(userID int64, kind string) (int64, error) {
	var sum *int64
	err := r.db.Model(&model.CreditTransaction{}).
		Where("user_id = ? AND transaction_type = ?", userID, kind).
		Select("SUM(ABS(credits))").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// LastPurchaseAt 最近一次购买时间
func (r *CreditRepository) LastPurchaseAt(userID int64) (*time.Time, error) {
	var entry model.CreditTransaction
	err := r.db.Where("user_id = ? AND transaction_type = ?", userID, model.CreditKindPurchase).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry.CreatedAt, nil
}

// ListByUser 按时间倒序取流水
func (r *CreditRepository) ListByUser(userID int64, limit int) ([]model.CreditTransaction, error) {
	var entries []model.CreditTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
