package service

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/paywall_go_server/config"
	"github.com/qs3c/paywall_go_server/internal/model"
	"github.com/qs3c/paywall_go_server/internal/model/dto"
	"github.com/qs3c/paywall_go_server/internal/pkg/oss"
	"github.com/qs3c/paywall_go_server/internal/repository"
)

var (
	ErrNotCreator       = errors.New("只有创作者可以上传内容")
	ErrContentNotFound  = errors.New("内容不存在或已过期")
	ErrUnsupportedMedia = errors.New("不支持的媒体格式")
	ErrFileTooLarge     = errors.New("文件过大")
	ErrNotPurchased     = errors.New("尚未购买该内容")
	ErrOSSNotConfigured = errors.New("云存储未配置")
)

const defaultPageSize = 20

type ContentService struct {
	contentRepo *repository.ContentRepository
	paymentRepo *repository.PaymentRepository
	userRepo    *repository.UserRepository
	ossClient   *oss.Client
	cfg         *config.Config
}

func NewContentService(
	contentRepo *repository.ContentRepository,
	paymentRepo *repository.PaymentRepository,
	userRepo *repository.UserRepository,
	ossClient *oss.Client,
	cfg *config.Config,
) *ContentService {
	return &ContentService{
		contentRepo: contentRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		ossClient:   ossClient,
		cfg:         cfg,
	}
}

// Upload 创作者上传音视频内容
func (s *ContentService) Upload(creatorID int64, title, description, contentType, filename string, size int64, file io.Reader) (*dto.ContentItem, error) {
	user, err := s.userRepo.GetByID(creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsCreator {
		return nil, ErrNotCreator
	}

	mediaType, ok := s.classifyMedia(contentType)
	if !ok {
		return nil, ErrUnsupportedMedia
	}
	if size > s.cfg.Upload.MaxSize {
		return nil, ErrFileTooLarge
	}

	if s.ossClient == nil {
		return nil, ErrOSSNotConfigured
	}

	contentID := uuid.New().String()
	ext := filepath.Ext(filename)
	objectKey := fmt.Sprintf("media/%s%s", contentID, ext)

	fileURL, err := s.ossClient.UploadMedia(objectKey, file, contentType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	content := &model.Content{
		ID:          contentID,
		Title:       title,
		Description: description,
		FileURL:     fileURL,
		FileType:    mediaType,
		FileSize:    size,
		CreatorID:   creatorID,
		Price:       s.cfg.Content.Price,
		CreatedAt:   now,
		// 到期时间只在创建时计算一次，之后不再变更
		ExpiresAt: now.AddDate(0, 0, s.cfg.Content.RetentionDays),
		IsActive:  true,
	}

	if err := s.contentRepo.Create(content); err != nil {
		// 元数据写入失败时尽力回收已上传的文件
		if delErr := s.ossClient.Delete(objectKey); delErr != nil {
			log.Printf("Failed to clean up orphan object %s: %v", objectKey, delErr)
		}
		return nil, err
	}

	content.Creator = user
	return toContentItem(content), nil
}

// List 分页获取在线内容列表
func (s *ContentService) List(query *dto.ContentListQuery) ([]*dto.ContentItem, int64, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	contents, total, err := s.contentRepo.ListActive(query.Offset, limit)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ContentItem, 0, len(contents))
	for _, c := range contents {
		items = append(items, toContentItem(c))
	}
	return items, total, nil
}

// Get 获取内容详情并累加浏览数
func (s *ContentService) Get(contentID string) (*dto.ContentItem, error) {
	content, err := s.contentRepo.GetActive(contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}

	// 浏览计数失败不影响详情返回
	if err := s.contentRepo.IncrementViews(contentID); err != nil {
		log.Printf("Failed to increment views for content %s: %v", contentID, err)
	}

	return toContentItem(content), nil
}

// Stream 获取播放地址。创作者本人或已付费用户可访问。
func (s *ContentService) Stream(userID int64, contentID string) (*dto.StreamResponse, error) {
	content, err := s.contentRepo.GetActive(contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}

	if content.CreatorID != userID {
		paid, err := s.paymentRepo.HasCompleted(userID, contentID)
		if err != nil {
			return nil, err
		}
		if !paid {
			return nil, ErrNotPurchased
		}
	}

	// 未配置云存储时直接返回原始地址（开发环境）
	if s.ossClient == nil {
		return &dto.StreamResponse{URL: content.FileURL}, nil
	}

	objectKey := s.ossClient.ExtractObjectKey(content.FileURL)
	signedURL, err := s.ossClient.GetSignedURL(objectKey)
	if err != nil {
		return nil, err
	}
	return &dto.StreamResponse{URL: signedURL}, nil
}

// ListPurchased 获取用户已购买的在线内容
func (s *ContentService) ListPurchased(userID int64) ([]*dto.ContentItem, error) {
	contents, err := s.paymentRepo.ListPurchasedContent(userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ContentItem, 0, len(contents))
	for _, c := range contents {
		items = append(items, toContentItem(c))
	}
	return items, nil
}

// classifyMedia 按 Content-Type 判定媒体类型
func (s *ContentService) classifyMedia(contentType string) (string, bool) {
	for _, t := range s.cfg.Upload.AllowedAudioTypes {
		if contentType == t {
			return model.MediaTypeAudio, true
		}
	}
	for _, t := range s.cfg.Upload.AllowedVideoTypes {
		if contentType == t {
			return model.MediaTypeVideo, true
		}
	}
	return "", false
}

func toContentItem(c *model.Content) *dto.ContentItem {
	item := &dto.ContentItem{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		FileType:    c.FileType,
		FileSize:    c.FileSize,
		Price:       c.Price,
		Views:       c.Views,
		CreatedAt:   c.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		ExpiresAt:   c.ExpiresAt.UTC().Format("2006-01-02 15:04:05"),
	}
	if c.Creator != nil {
		item.CreatorName = c.Creator.CreatorName
	}
	return item
}
