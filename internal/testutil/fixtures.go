package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/paywall_go_server/internal/model"
)

var seq int64

func nextSeq() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextSeq()
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", n),
		Email:        fmt.Sprintf("test_%d@example.com", n),
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		PhoneNumber:  "0700000000",
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithCreator 设置为创作者
func WithCreator(creatorName string) func(*model.User) {
	return func(u *model.User) {
		u.IsCreator = true
		u.CreatorName = creatorName
	}
}

// TestContent 创建测试内容
func TestContent(t *testing.T, db *gorm.DB, creatorID int64, opts ...func(*model.Content)) *model.Content {
	t.Helper()

	now := time.Now().UTC()
	content := &model.Content{
		ID:        uuid.New().String(),
		Title:     fmt.Sprintf("Test Content %d", nextSeq()),
		FileURL:   "https://bucket.example.com/media/test.mp4",
		FileType:  model.MediaTypeVideo,
		FileSize:  1024,
		CreatorID: creatorID,
		Price:     5.0,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, 14),
		IsActive:  true,
	}

	for _, opt := range opts {
		opt(content)
	}

	// is_active 带 default:true，零值会被 GORM 从 INSERT 中省略，需要显式落库
	wantInactive := !content.IsActive

	if err := db.Create(content).Error; err != nil {
		t.Fatalf("Failed to create test content: %v", err)
	}

	if wantInactive {
		if err := db.Model(content).Update("is_active", false).Error; err != nil {
			t.Fatalf("Failed to deactivate test content: %v", err)
		}
	}

	return content
}

// WithPrice 设置价格
func WithPrice(price float64) func(*model.Content) {
	return func(c *model.Content) {
		c.Price = price
	}
}

// WithExpiry 设置创建/过期时间
func WithExpiry(createdAt, expiresAt time.Time) func(*model.Content) {
	return func(c *model.Content) {
		c.CreatedAt = createdAt
		c.ExpiresAt = expiresAt
	}
}

// WithInactive 设置为已下线
func WithInactive() func(*model.Content) {
	return func(c *model.Content) {
		c.IsActive = false
	}
}

// TestPayment 创建测试支付记录
func TestPayment(t *testing.T, db *gorm.DB, userID int64, contentID string, opts ...func(*model.Payment)) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		UserID:       userID,
		ContentID:    contentID,
		Amount:       5.0,
		ProviderTxID: fmt.Sprintf("PW-%d", nextSeq()),
		Status:       model.PaymentStatusPending,
	}

	for _, opt := range opts {
		opt(payment)
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return payment
}

// WithCompleted 设置为已完成
func WithCompleted(completedAt time.Time) func(*model.Payment) {
	return func(p *model.Payment) {
		key := fmt.Sprintf("%d:%s", p.UserID, p.ContentID)
		at := completedAt.UTC()
		p.Status = model.PaymentStatusCompleted
		p.CompletedAt = &at
		p.CompletedKey = &key
	}
}

// WithProviderTxID 设置外部交易号
func WithProviderTxID(txID string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.ProviderTxID = txID
	}
}
