package model

import (
	"time"
)

// 支付状态，pending 只能转移到 completed 或 failed，终态不再变化
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

type Payment struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	UserID        int64      `gorm:"not null;index" json:"user_id"`
	ContentID     string     `gorm:"size:36;not null;index" json:"content_id"`
	Amount        float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	ProviderTxID  string     `gorm:"column:provider_tx_id;size:100;uniqueIndex" json:"provider_tx_id"`
	Status        string     `gorm:"size:20;default:pending;index" json:"status"`
	// 完成时写入 "<user_id>:<content_id>"，唯一索引保证同一用户对同一内容
	// 最多只有一笔 completed 支付（NULL 不参与唯一性判定）
	CompletedKey  *string    `gorm:"size:64;uniqueIndex" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	// 关联
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content *Content `gorm:"foreignKey:ContentID" json:"content,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// IsTerminal 是否已到终态
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusFailed
}
