package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/paywall_go_server/internal/model"
)

var (
	// ErrDuplicateCompleted 同一用户对同一内容已存在完成的支付
	ErrDuplicateCompleted = errors.New("该内容已完成支付")
	// ErrAlreadyProcessed 支付已处于终态，回调重复送达
	ErrAlreadyProcessed = errors.New("支付已处理")
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// completedKey 完成支付的唯一键，数据库唯一索引兜底并发场景
func completedKey(userID int64, contentID string) string {
	return fmt.Sprintf("%d:%s", userID, contentID)
}

// HasCompleted 用户是否已为该内容完成支付
func (r *PaymentRepository) HasCompleted(userID int64, contentID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Payment{}).
		Where("user_id = ? AND content_id = ? AND status = ?",
			userID, contentID, model.PaymentStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreatePending 创建待支付记录，事务内复查完成支付以关闭并发发起的竞态
func (r *PaymentRepository) CreatePending(payment *model.Payment) error {
	payment.Status = model.PaymentStatusPending
	payment.CompletedAt = nil
	payment.CompletedKey = nil

	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&model.Payment{}).
			Where("user_id = ? AND content_id = ? AND status = ?",
				payment.UserID, payment.ContentID, model.PaymentStatusCompleted).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateCompleted
		}

		return tx.Create(payment).Error
	})
}

// GetByProviderTxID 按外部交易号查询
func (r *PaymentRepository) GetByProviderTxID(providerTxID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Where("provider_tx_id = ?", providerTxID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByID(id int64) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkCompleted 将 pending 支付置为 completed，并在同一事务内写入创作者分成，
// 保证"完成的支付必有且仅有一条分成记录"。回调重复送达时返回 ErrAlreadyProcessed。
func (r *PaymentRepository) MarkCompleted(providerTxID string, creatorShare float64, now time.Time) (*model.Payment, error) {
	var payment model.Payment

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider_tx_id = ?", providerTxID).First(&payment).Error; err != nil {
			return err
		}

		completedAt := now.UTC()
		key := completedKey(payment.UserID, payment.ContentID)

		// 带状态条件的更新是 pending -> completed 的原子门闩：
		// 竞争的回调中只有一个能改到这一行。completed_key 的唯一索引
		// 另外兜住同一 (user, content) 下多条 pending 的情况——输掉的
		// 那条撞唯一键，和重复回调一样按已处理吸收
		result := tx.Model(&model.Payment{}).
			Where("id = ? AND status = ?", payment.ID, model.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":        model.PaymentStatusCompleted,
				"completed_at":  completedAt,
				"completed_key": key,
			})
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return ErrAlreadyProcessed
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		payment.Status = model.PaymentStatusCompleted
		payment.CompletedAt = &completedAt
		payment.CompletedKey = &key

		var content model.Content
		if err := tx.Where("id = ?", payment.ContentID).First(&content).Error; err != nil {
			return err
		}

		weekStart, weekEnd := model.WeekWindowOf(completedAt)
		earning := &model.Earnings{
			CreatorID: content.CreatorID,
			ContentID: content.ID,
			Amount:    payment.Amount * creatorShare,
			WeekStart: weekStart,
			WeekEnd:   weekEnd,
		}
		return tx.Create(earning).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			return &payment, err
		}
		return nil, err
	}

	return &payment, nil
}

// MarkFailed 将 pending 支付置为 failed，同样对重复回调幂等
func (r *PaymentRepository) MarkFailed(providerTxID string) (*model.Payment, error) {
	var payment model.Payment

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider_tx_id = ?", providerTxID).First(&payment).Error; err != nil {
			return err
		}

		result := tx.Model(&model.Payment{}).
			Where("id = ? AND status = ?", payment.ID, model.PaymentStatusPending).
			Update("status", model.PaymentStatusFailed)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		payment.Status = model.PaymentStatusFailed
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			return &payment, err
		}
		return nil, err
	}

	return &payment, nil
}

// ListPurchasedContent 用户已完成支付的内容（用户面板）
func (r *PaymentRepository) ListPurchasedContent(userID int64) ([]*model.Content, error) {
	var items []*model.Content
	err := r.db.Model(&model.Content{}).
		Joins("JOIN payments ON payments.content_id = content.id").
		Where("payments.user_id = ? AND payments.status = ?", userID, model.PaymentStatusCompleted).
		Preload("Creator").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
