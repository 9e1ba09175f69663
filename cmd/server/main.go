package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/qs3c/paywall_go_server/config"
	"github.com/qs3c/paywall_go_server/internal/api"
	"github.com/qs3c/paywall_go_server/internal/api/handler"
	"github.com/qs3c/paywall_go_server/internal/database"
	"github.com/qs3c/paywall_go_server/internal/pkg/cron"
	"github.com/qs3c/paywall_go_server/internal/pkg/email"
	"github.com/qs3c/paywall_go_server/internal/pkg/oss"
	"github.com/qs3c/paywall_go_server/internal/pkg/payway"
	"github.com/qs3c/paywall_go_server/internal/pkg/pubsub"
	"github.com/qs3c/paywall_go_server/internal/pkg/queue"
	"github.com/qs3c/paywall_go_server/internal/pkg/ws"
	"github.com/qs3c/paywall_go_server/internal/repository"
	"github.com/qs3c/paywall_go_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS（可选，未配置时上传接口不可用）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Fatalf("Failed to init OSS client: %v", err)
		}
		log.Println("OSS client ready")
	} else {
		log.Println("OSS not configured, media upload disabled")
	}

	// 初始化邮件服务（可选）
	var emailSvc *email.Service
	if cfg.Email.SMTPHost != "" {
		emailSvc = email.NewService(&cfg.Email)
	}

	// 支付通道客户端
	paywayClient := payway.NewClient(&cfg.Payway)

	// WebSocket Hub 与支付事件订阅
	wsHub := ws.NewHub()
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(event *pubsub.PaymentEvent) {
			if err := wsHub.SendToUser(event.UserID, &ws.Message{
				Type: event.Type,
				Data: event,
			}); err != nil {
				log.Printf("Failed to push payment event to user %d: %v", event.UserID, err)
			}
		})
		if err != nil {
			log.Printf("Payment event subscription stopped: %v", err)
		}
	}()
	log.Println("Payment event subscriber started")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	earningsRepo := repository.NewEarningsRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, emailSvc, cfg)
	contentService := service.NewContentService(contentRepo, paymentRepo, userRepo, ossClient, cfg)
	paymentService := service.NewPaymentService(paymentRepo, contentRepo, paywayClient, publisher, rdb, cfg)
	earningsService := service.NewEarningsService(earningsRepo, contentRepo, paymentRepo, userRepo, emailSvc)

	// 过期清理定时任务
	retryQueue := queue.NewDeleteRetryQueue(rdb, cfg.Queue.BlobDeleteQueue)
	var blobStore cron.BlobStore
	if ossClient != nil {
		blobStore = ossClient
	}
	cronService := cron.NewService(contentRepo, blobStore, retryQueue)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	contentHandler := handler.NewContentHandler(contentService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	dashboardHandler := handler.NewDashboardHandler(earningsService)
	adminHandler := handler.NewAdminHandler(earningsService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		contentHandler,
		paymentHandler,
		dashboardHandler,
		adminHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
