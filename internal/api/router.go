package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/paywall_go_server/config"
	"github.com/qs3c/paywall_go_server/internal/api/handler"
	"github.com/qs3c/paywall_go_server/internal/api/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	contentHandler   *handler.ContentHandler
	paymentHandler   *handler.PaymentHandler
	dashboardHandler *handler.DashboardHandler
	adminHandler     *handler.AdminHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	contentHandler *handler.ContentHandler,
	paymentHandler *handler.PaymentHandler,
	dashboardHandler *handler.DashboardHandler,
	adminHandler *handler.AdminHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		contentHandler:   contentHandler,
		paymentHandler:   paymentHandler,
		dashboardHandler: dashboardHandler,
		adminHandler:     adminHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket（支付结果推送）
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 公开接口 - 内容浏览
		api.GET("/content", r.contentHandler.List)
		api.GET("/content/:id", r.contentHandler.Get)

		// 公开接口 - 支付回调（通道只认 transaction_id）
		api.POST("/payments/callback", r.paymentHandler.Callback)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.authHandler.Profile)
				user.POST("/become-creator", r.authHandler.BecomeCreator)
				user.GET("/purchases", r.contentHandler.ListPurchased)
			}

			// 内容
			authenticated.POST("/content", r.contentHandler.Upload)
			authenticated.GET("/content/:id/stream", r.contentHandler.Stream)

			// 支付
			authenticated.POST("/payments", r.paymentHandler.Initiate)
			authenticated.GET("/payments/:id", r.paymentHandler.Status)

			// 面板
			dashboard := authenticated.Group("/dashboard")
			{
				dashboard.GET("/creator", r.dashboardHandler.Creator)
				dashboard.GET("/user", r.dashboardHandler.User)
			}
		}

		// 后台接口 - 结算与打款
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(r.cfg.Admin.APIKey))
		{
			admin.GET("/earnings/weekly", r.adminHandler.WeeklyEarnings)
			admin.GET("/earnings/weekly/detail", r.adminHandler.WeeklyDetail)
			admin.GET("/earnings/weekly/export", r.adminHandler.ExportCSV)
			admin.POST("/earnings/payout", r.adminHandler.Payout)
		}
	}

	return engine
}
