package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/paywall_go_server/internal/api/middleware"
	"github.com/qs3c/paywall_go_server/internal/model/dto"
	"github.com/qs3c/paywall_go_server/internal/pkg/payway"
	"github.com/qs3c/paywall_go_server/internal/pkg/response"
	"github.com/qs3c/paywall_go_server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Initiate 发起内容购买
// POST /api/v1/payments
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.InitiatePurchase(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrAlreadyPurchased):
			response.AlreadyPurchasedError(c, err.Error())
		case errors.Is(err, payway.ErrUpstream):
			response.UpstreamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "支付已受理，请在手机上确认", resp)
}

// Callback 支付通道回调（无认证公开入口，只认 transaction_id）。
// 面向通道而非前端，直接用 HTTP 状态码应答：通道对非 2xx 重试投递。
// POST /api/v1/payments/callback
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req dto.PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid callback payload"})
		return
	}

	if err := h.paymentService.HandleCallback(c.Request.Context(), &req); err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown transaction"})
		case errors.Is(err, service.ErrUnrecognizedStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status 支付状态轮询（WebSocket 推送的兜底）
// GET /api/v1/payments/:id
func (h *PaymentHandler) Status(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	paymentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的支付 ID")
		return
	}

	resp, err := h.paymentService.GetStatus(userID, paymentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			response.NotFoundError(c, err.Error())
		case errors.Is(err, service.ErrNotPaymentOwner):
			response.PermissionError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}
