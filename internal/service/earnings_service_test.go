package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/paywall_go_server/internal/model"
	"github.com/qs3c/paywall_go_server/internal/model/dto"
	"github.com/qs3c/paywall_go_server/internal/repository"
	"github.com/qs3c/paywall_go_server/internal/testutil"
)

func setupEarningsService(t *testing.T) (*EarningsService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)

	service := NewEarningsService(
		repository.NewEarningsRepository(db),
		repository.NewContentRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewUserRepository(db),
		nil,
	)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, cleanup
}

func seedEarning(t *testing.T, db *gorm.DB, creatorID int64, contentID string, amount float64, at time.Time) *model.Earnings {
	t.Helper()

	weekStart, weekEnd := model.WeekWindowOf(at)
	earning := &model.Earnings{
		CreatorID: creatorID,
		ContentID: contentID,
		Amount:    amount,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
	}
	require.NoError(t, db.Create(earning).Error)
	return earning
}

func TestEarningsService_WeeklySummary(t *testing.T) {
	service, db, cleanup := setupEarningsService(t)
	defer cleanup()

	creatorA := testutil.TestUser(t, db, testutil.WithCreator("作者A"))
	creatorB := testutil.TestUser(t, db, testutil.WithCreator("作者B"))
	contentA1 := testutil.TestContent(t, db, creatorA.ID)
	contentA2 := testutil.TestContent(t, db, creatorA.ID)
	contentB1 := testutil.TestContent(t, db, creatorB.ID)

	// 2025-06-18 是周三，属于 06-16（周一）起始的那一周
	wed := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	seedEarning(t, db, creatorA.ID, contentA1.ID, 2.5, wed)
	seedEarning(t, db, creatorA.ID, contentA1.ID, 2.5, wed.Add(time.Hour))
	seedEarning(t, db, creatorA.ID, contentA2.ID, 2.5, wed)
	seedEarning(t, db, creatorB.ID, contentB1.ID, 2.5, wed)

	// 另一周的记录不计入
	seedEarning(t, db, creatorA.ID, contentA1.ID, 2.5, wed.AddDate(0, 0, 7))

	summaries, err := service.WeeklySummary(&dto.WeeklyEarningsQuery{WeekStart: "2025-06-16"})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, creatorA.ID, summaries[0].CreatorID)
	assert.Equal(t, "作者A", summaries[0].CreatorName)
	assert.InDelta(t, 7.5, summaries[0].TotalAmount, 0.001)
	assert.Equal(t, 2, summaries[0].ContentCount)

	assert.Equal(t, creatorB.ID, summaries[1].CreatorID)
	assert.InDelta(t, 2.5, summaries[1].TotalAmount, 0.001)
}

func TestEarningsService_WeeklySummary_AlignsToMonday(t *testing.T) {
	service, db, cleanup := setupEarningsService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	content := testutil.TestContent(t, db, creator.ID)

	wed := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	seedEarning(t, db, creator.ID, content.ID, 2.5, wed)

	// 查询传周三，自动对齐到 06-16 那一周
	summaries, err := service.WeeklySummary(&dto.WeeklyEarningsQuery{WeekStart: "2025-06-18"})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.InDelta(t, 2.5, summaries[0].TotalAmount, 0.001)
}

func TestEarningsService_WeeklySummary_InvalidDate(t *testing.T) {
	service, _, cleanup := setupEarningsService(t)
	defer cleanup()

	_, err := service.WeeklySummary(&dto.WeeklyEarningsQuery{WeekStart: "not-a-date"})
	assert.ErrorIs(t, err, ErrInvalidWeekStart)
}

func TestEarningsService_WeeklySummary_ExcludesPaidOut(t *testing.T) {
	service, db, cleanup := setupEarningsService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	content := testutil.TestContent(t, db, creator.ID)

	wed := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	paid := seedEarning(t, db, creator.ID, content.ID, 2.5, wed)
	require.NoError(t, db.Model(paid).Update("paid_out", true).Error)
	seedEarning(t, db, creator.ID, content.ID, 2.5, wed)

	summaries, err := service.WeeklySummary(&dto.WeeklyEarningsQuery{WeekStart: "2025-06-16"})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.InDelta(t, 2.5, summaries[0].TotalAmount, 0.001)
}

func TestEarningsService_ExportWeeklyCSV(t *testing.T) {
	service, db, cleanup := setupEarningsService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者A"))
	content := testutil.TestContent(t, db, creator.ID)

	wed := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	seedEarning(t, db, creator.ID, content.ID, 2.5, wed)
	seedEarning(t, db, creator.ID, content.ID, 2.5, wed)

	data, err := service.ExportWeeklyCSV(&dto.WeeklyEarningsQuery{WeekStart: "2025-06-16"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "creator_id,creator_name,phone_number,total_amount", lines[0])
	assert.Contains(t, lines[1], "作者A")
	assert.Contains(t, lines[1], "5.00")
}

func TestEarningsService_Payout(t *testing.T) {
	service, db, cleanup := setupEarningsService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	content := testutil.TestContent(t, db, creator.ID)

	wed := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	e1 := seedEarning(t, db, creator.ID, content.ID, 2.5, wed)
	e2 := seedEarning(t, db, creator.ID, content.ID, 2.5, wed)

	err := service.Payout(&dto.PayoutRequest{EarningIDs: []int64{e1.ID, e2.ID}})
	require.NoError(t, err)

	var remaining []model.Earnings
	require.NoError(t, db.Where("paid_out = ?", false).Find(&remaining).Error)
	assert.Empty(t, remaining)

	// 重复打款无副作用
	err = service.Payout(&dto.PayoutRequest{EarningIDs: []int64{e1.ID, e2.ID}})
	require.NoError(t, err)
}

func TestEarningsService_CreatorDashboard(t *testing.T) {
	service, db, cleanup := setupEarningsService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	content := testutil.TestContent(t, db, creator.ID)
	testutil.TestContent(t, db, creator.ID)

	wed := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	seedEarning(t, db, creator.ID, content.ID, 2.5, wed)
	seedEarning(t, db, creator.ID, content.ID, 2.5, wed)

	dashboard, err := service.CreatorDashboard(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, dashboard.ContentCount)
	assert.InDelta(t, 5.0, dashboard.TotalEarnings, 0.001)
	assert.Len(t, dashboard.ContentItems, 2)
}

func TestEarningsService_UserDashboard(t *testing.T) {
	service, db, cleanup := setupEarningsService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	viewer := testutil.TestUser(t, db)
	bought := testutil.TestContent(t, db, creator.ID)
	testutil.TestPayment(t, db, viewer.ID, bought.ID,
		testutil.WithCompleted(time.Now().UTC()))

	dashboard, err := service.UserDashboard(viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.PurchasedCount)
	require.Len(t, dashboard.PurchasedContent, 1)
	assert.Equal(t, bought.ID, dashboard.PurchasedContent[0].ID)
}
