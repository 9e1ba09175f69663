package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/paywall_go_server/internal/model"
)

type EarningsRepository struct {
	db *gorm.DB
}

func NewEarningsRepository(db *gorm.DB) *EarningsRepository {
	return &EarningsRepository{db: db}
}

func (r *EarningsRepository) Create(earning *model.Earnings) error {
	return r.db.Create(earning).Error
}

func (r *EarningsRepository) GetByID(id int64) (*model.Earnings, error) {
	var earning model.Earnings
	err := r.db.Where("id = ?", id).First(&earning).Error
	if err != nil {
		return nil, err
	}
	return &earning, nil
}

// ListUnpaidByWeek 指定周窗口内未打款的分成记录
func (r *EarningsRepository) ListUnpaidByWeek(weekStart, weekEnd time.Time) ([]*model.Earnings, error) {
	var earnings []*model.Earnings
	err := r.db.Preload("Creator").Preload("Content").
		Where("week_start = ? AND week_end = ? AND paid_out = ?", weekStart, weekEnd, false).
		Order("creator_id, created_at").
		Find(&earnings).Error
	if err != nil {
		return nil, err
	}
	return earnings, nil
}

// ListByCreatorAndWeek 创作者在指定周窗口内的分成记录
func (r *EarningsRepository) ListByCreatorAndWeek(creatorID int64, weekStart, weekEnd time.Time) ([]*model.Earnings, error) {
	var earnings []*model.Earnings
	err := r.db.Where("creator_id = ? AND week_start = ? AND week_end = ?",
		creatorID, weekStart, weekEnd).
		Find(&earnings).Error
	if err != nil {
		return nil, err
	}
	return earnings, nil
}

// SumUnpaidByCreator 创作者当前未打款总额
func (r *EarningsRepository) SumUnpaidByCreator(creatorID int64) (float64, error) {
	var total *float64
	err := r.db.Model(&model.Earnings{}).
		Select("SUM(amount)").
		Where("creator_id = ? AND paid_out = ?", creatorID, false).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// ListByIDs 按 ID 批量查询，带创作者信息
func (r *EarningsRepository) ListByIDs(ids []int64) ([]*model.Earnings, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var earnings []*model.Earnings
	err := r.db.Preload("Creator").
		Where("id IN ?", ids).
		Find(&earnings).Error
	if err != nil {
		return nil, err
	}
	return earnings, nil
}

// MarkPaidOut 批量标记已打款，可重复调用
func (r *EarningsRepository) MarkPaidOut(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&model.Earnings{}).
		Where("id IN ?", ids).
		Update("paid_out", true).Error
}
