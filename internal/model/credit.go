package model

import (
	"time"
)

// 积分流水类型
const (
	CreditKindPurchase = "purchase"
	CreditKindUsage    = "usage"
	CreditKindReward   = "reward"
	CreditKindRefund   = "refund"
)

// CreditTransaction 积分流水（只追加，不修改）。
// Credits 为带符号增量：正数为入账，负数为消耗。
// TransactionID 记录外部支付/请求凭证，唯一索引用于幂等去重。
type CreditTransaction struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"not null;index" json:"user_id"`
	Credits       int       `gorm:"not null" json:"credits"`
	Type          string    `gorm:"column:transaction_type;size:20;not null;index" json:"transaction_type"`
	Description   string    `gorm:"size:255" json:"description,omitempty"`
	TransactionID *string   `gorm:"size:100;uniqueIndex" json:"transaction_id,omitempty"`
	ReceiptData   string    `gorm:"type:text" json:"-"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

// Transaction 外部支付事件原始记录（RevenueCat 等渠道回调）
type Transaction struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"not null;index" json:"user_id"`
	ProductID     string    `gorm:"size:100;not null" json:"product_id"`
	TransactionID string    `gorm:"size:100;uniqueIndex;not null" json:"transaction_id"`
	PurchaseType  string    `gorm:"size:20;not null" json:"purchase_type"` // subscription, credit_pack
	ProviderData  string    `gorm:"type:text" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
