package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/paywall_go_server/internal/model"
)

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) Create(content *model.Content) error {
	return r.db.Create(content).Error
}

// GetActive 仅返回仍在有效期内展示的内容
func (r *ContentRepository) GetActive(id string) (*model.Content, error) {
	var content model.Content
	err := r.db.Preload("Creator").
		Where("id = ? AND is_active = ?", id, true).
		First(&content).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *ContentRepository) GetByID(id string) (*model.Content, error) {
	var content model.Content
	err := r.db.Where("id = ?", id).First(&content).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// ListActive 有效内容列表，按创建时间倒序（id 做第二排序键保证分页稳定）
func (r *ContentRepository) ListActive(offset, limit int) ([]*model.Content, int64, error) {
	var items []*model.Content
	var total int64

	query := r.db.Model(&model.Content{}).Where("is_active = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Creator").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListByCreator 创作者自己的有效内容
func (r *ContentRepository) ListByCreator(creatorID int64) ([]*model.Content, error) {
	var items []*model.Content
	err := r.db.Where("creator_id = ? AND is_active = ?", creatorID, true).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListExpired 已过期但还未下线的内容（清理任务使用）
func (r *ContentRepository) ListExpired(now time.Time) ([]*model.Content, error) {
	var items []*model.Content
	err := r.db.Where("expires_at < ? AND is_active = ?", now, true).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// IncrementViews 增加浏览数
func (r *ContentRepository) IncrementViews(id string) error {
	return r.db.Model(&model.Content{}).Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

// IncrementPaidViews 增加付费观看数，内容已下线则不生效
func (r *ContentRepository) IncrementPaidViews(id string) (int64, error) {
	result := r.db.Model(&model.Content{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("paid_views", gorm.Expr("paid_views + 1"))
	return result.RowsAffected, result.Error
}

// Deactivate 下线内容，可重复调用
func (r *ContentRepository) Deactivate(id string) error {
	return r.db.Model(&model.Content{}).Where("id = ?", id).
		Update("is_active", false).Error
}
