package model

import (
	"time"
)

// Earnings 创作者分成记录，仅由支付完成事务创建，每笔完成的支付恰好一条
type Earnings struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatorID int64     `gorm:"not null;index" json:"creator_id"`
	ContentID string    `gorm:"size:36;not null;index" json:"content_id"`
	Amount    float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	WeekStart time.Time `gorm:"not null;index" json:"week_start"` // 周一 00:00 UTC
	WeekEnd   time.Time `gorm:"not null" json:"week_end"`         // week_start + 6 天
	PaidOut   bool      `gorm:"default:false;index" json:"paid_out"`
	CreatedAt time.Time `json:"created_at"`

	// 关联
	Creator *User    `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Content *Content `gorm:"foreignKey:ContentID" json:"content,omitempty"`
}

func (Earnings) TableName() string {
	return "earnings"
}

// WeekWindowOf 返回包含 t 的自然周（周一对齐）的起止日期
func WeekWindowOf(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0
	start := day.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)
	return start, end
}
