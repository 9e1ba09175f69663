package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/paywall_go_server/config"
	"github.com/qs3c/paywall_go_server/internal/model/dto"
	"github.com/qs3c/paywall_go_server/internal/repository"
	"github.com/qs3c/paywall_go_server/internal/testutil"
)

func setupContentService(t *testing.T) (*ContentService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)

	cfg := &config.Config{
		Content: config.ContentConfig{
			Price:         5.0,
			CreatorShare:  0.5,
			RetentionDays: 14,
		},
		Upload: config.UploadConfig{
			MaxSize:           500 * 1024 * 1024,
			AllowedAudioTypes: []string{"audio/mpeg", "audio/wav", "audio/ogg"},
			AllowedVideoTypes: []string{"video/mp4", "video/quicktime", "video/x-msvideo", "video/webm"},
		},
	}

	service := NewContentService(
		repository.NewContentRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewUserRepository(db),
		nil, // OSS 未配置，上传走校验路径，播放回落原始地址
		cfg,
	)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return service, db, cleanup
}

func TestContentService_Upload_NotCreator(t *testing.T) {
	service, db, cleanup := setupContentService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	_, err := service.Upload(user.ID, "标题", "", "audio/mpeg", "a.mp3", 1024, strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrNotCreator)
}

func TestContentService_Upload_UnsupportedMedia(t *testing.T) {
	service, db, cleanup := setupContentService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))

	_, err := service.Upload(creator.ID, "标题", "", "application/pdf", "a.pdf", 1024, strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestContentService_Upload_FileTooLarge(t *testing.T) {
	service, db, cleanup := setupContentService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))

	tooBig := int64(501 * 1024 * 1024)
	_, err := service.Upload(creator.ID, "标题", "", "video/mp4", "a.mp4", tooBig, strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestContentService_Upload_OSSNotConfigured(t *testing.T) {
	service, db, cleanup := setupContentService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))

	// 校验全部通过后才会触达云存储
	_, err := service.Upload(creator.ID, "标题", "", "audio/mpeg", "a.mp3", 1024, strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrOSSNotConfigured)
}

func TestContentService_List(t *testing.T) {
	service, db, cleanup := setupContentService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	testutil.TestContent(t, db, creator.ID)
	testutil.TestContent(t, db, creator.ID)
	testutil.TestContent(t, db, creator.ID, testutil.WithInactive())

	items, total, err := service.List(&dto.ContentListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
	assert.Equal(t, "作者", items[0].CreatorName)
}

func TestContentService_Get_IncrementsViews(t *testing.T) {
	service, db, cleanup := setupContentService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	content := testutil.TestContent(t, db, creator.ID)

	item, err := service.Get(content.ID)
	require.NoError(t, err)
	assert.Equal(t, content.ID, item.ID)

	item, err = service.Get(content.ID)
	require.NoError(t, err)
	// 第二次请求看到第一次的计数
	assert.Equal(t, 1, item.Views)
}

func TestContentService_Get_NotFound(t *testing.T) {
	service, _, cleanup := setupContentService(t)
	defer cleanup()

	_, err := service.Get("no-such-content")
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestContentService_Get_Expired(t *testing.T) {
	service, db, cleanup := setupContentService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	now := time.Now().UTC()
	content := testutil.TestContent(t, db, creator.ID,
		testutil.WithExpiry(now.AddDate(0, 0, -15), now.AddDate(0, 0, -1)),
		testutil.WithInactive())

	_, err := service.Get(content.ID)
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestContentService_Stream_NotPurchased(t *testing.T) {
	service, db, cleanup := setupContentService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	viewer := testutil.TestUser(t, db)
	content := testutil.TestContent(t, db, creator.ID)

	_, err := service.Stream(viewer.ID, content.ID)
	assert.ErrorIs(t, err, ErrNotPurchased)
}

func TestContentService_Stream_Purchased(t *testing.T) {
	service, db, cleanup := setupContentService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	viewer := testutil.TestUser(t, db)
	content := testutil.TestContent(t, db, creator.ID)
	testutil.TestPayment(t, db, viewer.ID, content.ID,
		testutil.WithCompleted(time.Now().UTC()))

	resp, err := service.Stream(viewer.ID, content.ID)
	require.NoError(t, err)
	assert.Equal(t, content.FileURL, resp.URL)
}

func TestContentService_Stream_CreatorOwnContent(t *testing.T) {
	service, db, cleanup := setupContentService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	content := testutil.TestContent(t, db, creator.ID)

	// 创作者本人无需购买
	resp, err := service.Stream(creator.ID, content.ID)
	require.NoError(t, err)
	assert.Equal(t, content.FileURL, resp.URL)
}

func TestContentService_ListPurchased(t *testing.T) {
	service, db, cleanup := setupContentService(t)
	defer cleanup()

	creator := testutil.TestUser(t, db, testutil.WithCreator("作者"))
	viewer := testutil.TestUser(t, db)
	bought := testutil.TestContent(t, db, creator.ID)
	testutil.TestContent(t, db, creator.ID)
	testutil.TestPayment(t, db, viewer.ID, bought.ID,
		testutil.WithCompleted(time.Now().UTC()))

	items, err := service.ListPurchased(viewer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, bought.ID, items[0].ID)
}
