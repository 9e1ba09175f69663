package model

import (
	"time"
)

// 媒体类型
const (
	MediaTypeAudio = "audio"
	MediaTypeVideo = "video"
)

type Content struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	FileURL     string    `gorm:"size:500;not null" json:"file_url"`
	FileType    string    `gorm:"size:10;not null" json:"file_type"` // audio, video
	FileSize    int64     `json:"file_size"`
	CreatorID   int64     `gorm:"not null;index" json:"creator_id"`
	Price       float64   `gorm:"type:decimal(10,2);default:5.0" json:"price"`
	Views       int       `gorm:"default:0" json:"views"`
	PaidViews   int       `gorm:"default:0" json:"paid_views"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`

	// 关联
	Creator *User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

func (Content) TableName() string {
	return "content"
}
