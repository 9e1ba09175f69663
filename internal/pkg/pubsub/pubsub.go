package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelPaymentEvents = "payment_events"
)

// PaymentEvent 支付结果事件，回调处理完成后发布，
// 由 API 进程订阅并通过 WebSocket 推给买家（替代客户端轮询）
type PaymentEvent struct {
	Type      string  `json:"type"`
	UserID    int64   `json:"user_id"`
	PaymentID int64   `json:"payment_id"`
	ContentID string  `json:"content_id"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishPaymentEvent 发布支付结果事件
func (p *Publisher) PublishPaymentEvent(ctx context.Context, event *PaymentEvent) error {
	event.Type = "payment_result"

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	return p.client.Publish(ctx, ChannelPaymentEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅支付结果事件
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*PaymentEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelPaymentEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event PaymentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
