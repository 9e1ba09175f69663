package dto

// InitiatePaymentRequest 发起支付请求
type InitiatePaymentRequest struct {
	ContentID   string `json:"content_id" binding:"required,max=36"`
	PhoneNumber string `json:"phone_number" binding:"required,max=15"`
}

// InitiatePaymentResponse 发起支付响应
type InitiatePaymentResponse struct {
	PaymentID     int64  `json:"payment_id"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// PaymentCallbackRequest 支付回调（来自 Payway，不可信输入，
// 仅通过 transaction_id 反查待处理支付来确认）
type PaymentCallbackRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,max=100"`
	Status        string `json:"status" binding:"required,max=20"`
}

// PaymentStatusResponse 支付状态查询响应
type PaymentStatusResponse struct {
	PaymentID   int64  `json:"payment_id"`
	ContentID   string `json:"content_id"`
	Status      string `json:"status"`
	CompletedAt string `json:"completed_at,omitempty"`
}
