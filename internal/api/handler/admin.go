package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/paywall_go_server/internal/model/dto"
	"github.com/qs3c/paywall_go_server/internal/pkg/response"
	"github.com/qs3c/paywall_go_server/internal/service"
)

// AdminHandler 后台结算接口，走独立密钥认证
type AdminHandler struct {
	earningsService *service.EarningsService
}

func NewAdminHandler(earningsService *service.EarningsService) *AdminHandler {
	return &AdminHandler{
		earningsService: earningsService,
	}
}

// WeeklyEarnings 周分成汇总（按创作者）
// GET /api/v1/admin/earnings/weekly?week_start=2025-06-16
func (h *AdminHandler) WeeklyEarnings(c *gin.Context) {
	var query dto.WeeklyEarningsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	summaries, err := h.earningsService.WeeklySummary(&query)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWeekStart) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, summaries)
}

// WeeklyDetail 周分成明细（打款依据，含记录 ID）
// GET /api/v1/admin/earnings/weekly/detail?week_start=2025-06-16
func (h *AdminHandler) WeeklyDetail(c *gin.Context) {
	var query dto.WeeklyEarningsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	earnings, err := h.earningsService.WeeklyDetail(&query)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWeekStart) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, earnings)
}

// ExportCSV 导出周打款清单
// GET /api/v1/admin/earnings/weekly/export?week_start=2025-06-16
func (h *AdminHandler) ExportCSV(c *gin.Context) {
	var query dto.WeeklyEarningsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	data, err := h.earningsService.ExportWeeklyCSV(&query)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWeekStart) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	filename := fmt.Sprintf("earnings_%s.csv", query.WeekStart)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, "text/csv; charset=utf-8", data)
}

// Payout 批量标记打款并通知创作者
// POST /api/v1/admin/earnings/payout
func (h *AdminHandler) Payout(c *gin.Context) {
	var req dto.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.earningsService.Payout(&req); err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "打款已标记", nil)
}
