package payway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/qs3c/paywall_go_server/config"
)

// 回调送达的终态
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var ErrUpstream = errors.New("支付通道暂不可用")

// Client Payway 支付通道客户端。发起支付是异步受理：
// 返回交易号表示通道已接单，支付结果由回调送达。
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// InitiateRequest 发起支付请求体
type InitiateRequest struct {
	Amount      float64 `json:"amount"`
	PhoneNumber string  `json:"phone_number"`
	Description string  `json:"description"`
	CallbackURL string  `json:"callback_url"`
}

// InitiateResponse 通道受理响应
type InitiateResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
}

func NewClient(cfg *config.PaywayConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Initiate 向通道发起支付。超时或通道错误返回 ErrUpstream，
// 调用方此时不应落任何支付记录（本次发起视为未开始）。
func (c *Client) Initiate(ctx context.Context, req *InitiateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var initResp InitiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&initResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if initResp.TransactionID == "" {
		return "", fmt.Errorf("%w: empty transaction id", ErrUpstream)
	}

	return initResp.TransactionID, nil
}
