package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/qs3c/paywall_go_server/config"
	"github.com/qs3c/paywall_go_server/internal/model"
	"github.com/qs3c/paywall_go_server/internal/model/dto"
	"github.com/qs3c/paywall_go_server/internal/pkg/payway"
	"github.com/qs3c/paywall_go_server/internal/pkg/pubsub"
	"github.com/qs3c/paywall_go_server/internal/repository"
)

var (
	ErrAlreadyPurchased   = errors.New("已购买过该内容")
	ErrPaymentNotFound    = errors.New("支付记录不存在")
	ErrUnrecognizedStatus = errors.New("无法识别的支付状态")
	ErrNotPaymentOwner    = errors.New("无权查看该支付记录")
)

// purchaseCacheTTL 已购标记缓存时长
const purchaseCacheTTL = 24 * time.Hour

type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	contentRepo *repository.ContentRepository
	payway      *payway.Client
	publisher   *pubsub.Publisher
	redisClient *redis.Client
	cfg         *config.Config
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	contentRepo *repository.ContentRepository,
	paywayClient *payway.Client,
	publisher *pubsub.Publisher,
	redisClient *redis.Client,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		contentRepo: contentRepo,
		payway:      paywayClient,
		publisher:   publisher,
		redisClient: redisClient,
		cfg:         cfg,
	}
}

// InitiatePurchase 发起内容购买。通道受理成功后才落支付记录，
// 通道失败不会留下任何支付行，用户可直接重试。
func (s *PaymentService) InitiatePurchase(ctx context.Context, userID int64, req *dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error) {
	content, err := s.contentRepo.GetActive(req.ContentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}

	if s.hasPurchased(ctx, userID, req.ContentID) {
		return nil, ErrAlreadyPurchased
	}

	txID, err := s.payway.Initiate(ctx, &payway.InitiateRequest{
		Amount:      content.Price,
		PhoneNumber: req.PhoneNumber,
		Description: fmt.Sprintf("内容购买：%s", content.Title),
		CallbackURL: s.cfg.Server.BaseURL + "/api/v1/payments/callback",
	})
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		UserID:       userID,
		ContentID:    content.ID,
		Amount:       content.Price,
		ProviderTxID: txID,
		Status:       model.PaymentStatusPending,
	}
	if err := s.paymentRepo.CreatePending(payment); err != nil {
		if errors.Is(err, repository.ErrDuplicateCompleted) {
			return nil, ErrAlreadyPurchased
		}
		return nil, err
	}

	return &dto.InitiatePaymentResponse{
		PaymentID:     payment.ID,
		TransactionID: payment.ProviderTxID,
		Status:        payment.Status,
	}, nil
}

// HandleCallback 处理支付通道回调。重复回调与乱序回调都会被
// 状态机吸收：已到终态的支付直接按成功确认，不产生副作用。
func (s *PaymentService) HandleCallback(ctx context.Context, req *dto.PaymentCallbackRequest) error {
	switch req.Status {
	case payway.StatusCompleted:
		return s.handleCompleted(ctx, req.TransactionID)
	case payway.StatusFailed:
		return s.handleFailed(ctx, req.TransactionID)
	default:
		return ErrUnrecognizedStatus
	}
}

func (s *PaymentService) handleCompleted(ctx context.Context, txID string) error {
	payment, err := s.paymentRepo.MarkCompleted(txID, s.cfg.Content.CreatorShare, time.Now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		if errors.Is(err, repository.ErrAlreadyProcessed) {
			// 重复回调，确认即可
			return nil
		}
		return err
	}

	// 结算已落库，以下均为尽力而为的附带动作
	if rows, err := s.contentRepo.IncrementPaidViews(payment.ContentID); err != nil {
		log.Printf("Failed to increment paid views for content %s: %v", payment.ContentID, err)
	} else if rows == 0 {
		log.Printf("Paid view for content %s not counted: content no longer active", payment.ContentID)
	}
	s.cachePurchase(ctx, payment.UserID, payment.ContentID)
	s.publishResult(ctx, payment)
	return nil
}

func (s *PaymentService) handleFailed(ctx context.Context, txID string) error {
	payment, err := s.paymentRepo.MarkFailed(txID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		if errors.Is(err, repository.ErrAlreadyProcessed) {
			return nil
		}
		return err
	}

	s.publishResult(ctx, payment)
	return nil
}

// GetStatus 查询支付状态（兜底轮询接口，正常路径走 WebSocket 推送）
func (s *PaymentService) GetStatus(userID, paymentID int64) (*dto.PaymentStatusResponse, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrNotPaymentOwner
	}

	resp := &dto.PaymentStatusResponse{
		PaymentID: payment.ID,
		ContentID: payment.ContentID,
		Status:    payment.Status,
	}
	if payment.CompletedAt != nil {
		resp.CompletedAt = payment.CompletedAt.UTC().Format("2006-01-02 15:04:05")
	}
	return resp, nil
}

// hasPurchased 先查缓存再回落数据库
func (s *PaymentService) hasPurchased(ctx context.Context, userID int64, contentID string) bool {
	if s.redisClient != nil {
		n, err := s.redisClient.Exists(ctx, purchaseCacheKey(userID, contentID)).Result()
		if err == nil && n > 0 {
			return true
		}
	}

	paid, err := s.paymentRepo.HasCompleted(userID, contentID)
	if err != nil {
		log.Printf("Failed to check purchase for user %d content %s: %v", userID, contentID, err)
		return false
	}
	return paid
}

func (s *PaymentService) cachePurchase(ctx context.Context, userID int64, contentID string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Set(ctx, purchaseCacheKey(userID, contentID), 1, purchaseCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache purchase for user %d content %s: %v", userID, contentID, err)
	}
}

func (s *PaymentService) publishResult(ctx context.Context, payment *model.Payment) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishPaymentEvent(ctx, &pubsub.PaymentEvent{
		Type:      "payment_result",
		UserID:    payment.UserID,
		PaymentID: payment.ID,
		ContentID: payment.ContentID,
		Status:    payment.Status,
		Amount:    payment.Amount,
	})
	if err != nil {
		log.Printf("Failed to publish payment event for payment %d: %v", payment.ID, err)
	}
}

func purchaseCacheKey(userID int64, contentID string) string {
	return fmt.Sprintf("purchased:%d:%s", userID, contentID)
}
