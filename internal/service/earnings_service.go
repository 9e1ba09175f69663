package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/qs3c/paywall_go_server/internal/model"
	"github.com/qs3c/paywall_go_server/internal/model/dto"
	"github.com/qs3c/paywall_go_server/internal/pkg/email"
	"github.com/qs3c/paywall_go_server/internal/repository"
)

var ErrInvalidWeekStart = errors.New("周起始日期格式无效")

type EarningsService struct {
	earningsRepo *repository.EarningsRepository
	contentRepo  *repository.ContentRepository
	paymentRepo  *repository.PaymentRepository
	userRepo     *repository.UserRepository
	emailSvc     *email.Service
}

func NewEarningsService(
	earningsRepo *repository.EarningsRepository,
	contentRepo *repository.ContentRepository,
	paymentRepo *repository.PaymentRepository,
	userRepo *repository.UserRepository,
	emailSvc *email.Service,
) *EarningsService {
	return &EarningsService{
		earningsRepo: earningsRepo,
		contentRepo:  contentRepo,
		paymentRepo:  paymentRepo,
		userRepo:     userRepo,
		emailSvc:     emailSvc,
	}
}

// WeeklySummary 按创作者汇总指定周的未打款分成。
// 任意日期都会对齐到所在自然周（周一起始）。
func (s *EarningsService) WeeklySummary(query *dto.WeeklyEarningsQuery) ([]*dto.CreatorWeeklyEarnings, error) {
	weekStart, weekEnd, err := parseWeekStart(query.WeekStart)
	if err != nil {
		return nil, err
	}

	earnings, err := s.earningsRepo.ListUnpaidByWeek(weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	byCreator := make(map[int64]*dto.CreatorWeeklyEarnings)
	contentSeen := make(map[int64]map[string]struct{})
	for _, e := range earnings {
		summary, ok := byCreator[e.CreatorID]
		if !ok {
			summary = &dto.CreatorWeeklyEarnings{CreatorID: e.CreatorID}
			if e.Creator != nil {
				summary.CreatorName = e.Creator.CreatorName
				summary.PhoneNumber = e.Creator.PhoneNumber
			}
			byCreator[e.CreatorID] = summary
			contentSeen[e.CreatorID] = make(map[string]struct{})
		}
		summary.TotalAmount += e.Amount
		if _, ok := contentSeen[e.CreatorID][e.ContentID]; !ok {
			contentSeen[e.CreatorID][e.ContentID] = struct{}{}
			summary.ContentCount++
		}
	}

	result := make([]*dto.CreatorWeeklyEarnings, 0, len(byCreator))
	for _, summary := range byCreator {
		result = append(result, summary)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatorID < result[j].CreatorID
	})
	return result, nil
}

// WeeklyDetail 指定周的全部未打款分成明细（打款操作的依据）
func (s *EarningsService) WeeklyDetail(query *dto.WeeklyEarningsQuery) ([]*model.Earnings, error) {
	weekStart, weekEnd, err := parseWeekStart(query.WeekStart)
	if err != nil {
		return nil, err
	}
	return s.earningsRepo.ListUnpaidByWeek(weekStart, weekEnd)
}

// ExportWeeklyCSV 导出指定周的打款清单（交给财务）
func (s *EarningsService) ExportWeeklyCSV(query *dto.WeeklyEarningsQuery) ([]byte, error) {
	summaries, err := s.WeeklySummary(query)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"creator_id", "creator_name", "phone_number", "total_amount"}); err != nil {
		return nil, err
	}
	for _, s := range summaries {
		record := []string{
			fmt.Sprintf("%d", s.CreatorID),
			s.CreatorName,
			s.PhoneNumber,
			fmt.Sprintf("%.2f", s.TotalAmount),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Payout 批量标记分成已打款，并按创作者合并发送到账通知
func (s *EarningsService) Payout(req *dto.PayoutRequest) error {
	earnings, err := s.earningsRepo.ListByIDs(req.EarningIDs)
	if err != nil {
		return err
	}

	// 已打款的记录不重复通知
	pending := make([]*model.Earnings, 0, len(earnings))
	ids := make([]int64, 0, len(earnings))
	for _, e := range earnings {
		if e.PaidOut {
			continue
		}
		pending = append(pending, e)
		ids = append(ids, e.ID)
	}

	if err := s.earningsRepo.MarkPaidOut(ids); err != nil {
		return err
	}

	s.notifyPayouts(pending)
	return nil
}

// CreatorDashboard 创作者面板：内容统计与未结算总额
func (s *EarningsService) CreatorDashboard(creatorID int64) (*dto.CreatorDashboard, error) {
	contents, err := s.contentRepo.ListByCreator(creatorID)
	if err != nil {
		return nil, err
	}

	total, err := s.earningsRepo.SumUnpaidByCreator(creatorID)
	if err != nil {
		return nil, err
	}

	dashboard := &dto.CreatorDashboard{
		ContentCount:  len(contents),
		TotalEarnings: total,
		ContentItems:  make([]dto.CreatorContentStats, 0, len(contents)),
	}
	for _, c := range contents {
		dashboard.ContentItems = append(dashboard.ContentItems, dto.CreatorContentStats{
			ID:        c.ID,
			Title:     c.Title,
			Views:     c.Views,
			PaidViews: c.PaidViews,
			CreatedAt: c.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			ExpiresAt: c.ExpiresAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return dashboard, nil
}

// UserDashboard 用户面板：已购内容清单
func (s *EarningsService) UserDashboard(userID int64) (*dto.UserDashboard, error) {
	contents, err := s.paymentRepo.ListPurchasedContent(userID)
	if err != nil {
		return nil, err
	}

	dashboard := &dto.UserDashboard{
		PurchasedCount:   len(contents),
		PurchasedContent: make([]dto.ContentItem, 0, len(contents)),
	}
	for _, c := range contents {
		dashboard.PurchasedContent = append(dashboard.PurchasedContent, *toContentItem(c))
	}
	return dashboard, nil
}

// notifyPayouts 按创作者合并金额后发邮件，失败只记日志
func (s *EarningsService) notifyPayouts(earnings []*model.Earnings) {
	if s.emailSvc == nil || len(earnings) == 0 {
		return
	}

	type payoutNote struct {
		creator   *model.User
		weekStart time.Time
		amount    float64
	}
	byCreator := make(map[int64]*payoutNote)
	for _, e := range earnings {
		if e.Creator == nil || e.Creator.Email == "" {
			continue
		}
		note, ok := byCreator[e.CreatorID]
		if !ok {
			note = &payoutNote{creator: e.Creator, weekStart: e.WeekStart}
			byCreator[e.CreatorID] = note
		}
		note.amount += e.Amount
	}

	for _, note := range byCreator {
		err := s.emailSvc.SendPayoutNotification(
			note.creator.Email,
			note.creator.CreatorName,
			note.weekStart.Format("2006-01-02"),
			note.amount,
		)
		if err != nil {
			log.Printf("Failed to send payout notification to %s: %v", note.creator.Email, err)
		}
	}
}

// parseWeekStart 将 YYYY-MM-DD 对齐到所在自然周
func parseWeekStart(s string) (time.Time, time.Time, error) {
	day, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidWeekStart
	}
	start, end := model.WeekWindowOf(day)
	return start, end, nil
}
