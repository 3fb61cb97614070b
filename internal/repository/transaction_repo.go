package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/everwith_go_server/internal/model"
)

// TransactionRepository 渠道支付原始事件，transaction_id 唯一索引做去重
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Record 落一条支付事件。返回 false 表示该 transaction_id 已处理过。
func (r *TransactionRepository) Record(txn *model.Transaction) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoNothing: true,
	}).Create(txn)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *TransactionRepository) GetByTransactionID(txnID string) (*model.Transaction, error) {
	var txn model.Transaction
	if err := r.db.Where("transaction_id = ?", txnID).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}
