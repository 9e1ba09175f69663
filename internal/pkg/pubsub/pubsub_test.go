package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestPublishSubscribe(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	received := make(chan *PaymentEvent, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	sub := NewSubscriber(client)
	go func() {
		_ = sub.Subscribe(ctx, func(event *PaymentEvent) {
			received <- event
		})
	}()

	// 等待订阅建立
	time.Sleep(100 * time.Millisecond)

	pub := NewPublisher(client)
	err := pub.PublishPaymentEvent(ctx, &PaymentEvent{
		UserID:    7,
		PaymentID: 42,
		ContentID: "content-1",
		Status:    "completed",
		Amount:    5.0,
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "payment_result", event.Type)
		assert.Equal(t, int64(7), event.UserID)
		assert.Equal(t, int64(42), event.PaymentID)
		assert.Equal(t, "completed", event.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for payment event")
	}
}
