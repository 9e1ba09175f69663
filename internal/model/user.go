package model

import (
	"time"
)

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsCreator    bool      `gorm:"default:false" json:"is_creator"`
	CreatorName  string    `gorm:"size:100" json:"creator_name,omitempty"`
	PhoneNumber  string    `gorm:"size:15" json:"phone_number,omitempty"`
	BankDetails  string    `gorm:"type:text" json:"-"` // 打款信息 JSON，仅后台导出使用
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
