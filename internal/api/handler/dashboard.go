package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/paywall_go_server/internal/api/middleware"
	"github.com/qs3c/paywall_go_server/internal/pkg/response"
	"github.com/qs3c/paywall_go_server/internal/service"
)

type DashboardHandler struct {
	earningsService *service.EarningsService
}

func NewDashboardHandler(earningsService *service.EarningsService) *DashboardHandler {
	return &DashboardHandler{
		earningsService: earningsService,
	}
}

// Creator 创作者面板：内容统计与未结算收益
// GET /api/v1/dashboard/creator
func (h *DashboardHandler) Creator(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	dashboard, err := h.earningsService.CreatorDashboard(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, dashboard)
}

// User 用户面板：已购内容
// GET /api/v1/dashboard/user
func (h *DashboardHandler) User(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	dashboard, err := h.earningsService.UserDashboard(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, dashboard)
}
