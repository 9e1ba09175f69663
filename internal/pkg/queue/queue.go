package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DeleteRetryQueue 云存储删除重试队列。清理任务删除媒体失败时入队，
// 由后续的补偿轮次消费重试；元数据下线不依赖删除结果。
type DeleteRetryQueue struct {
	client    *redis.Client
	queueName string
}

// DeleteTask 待重试的删除任务
type DeleteTask struct {
	ContentID string `json:"content_id"`
	ObjectKey string `json:"object_key"`
	Attempts  int    `json:"attempts"`
}

func NewDeleteRetryQueue(client *redis.Client, queueName string) *DeleteRetryQueue {
	return &DeleteRetryQueue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将任务加入队列
func (q *DeleteRetryQueue) Push(ctx context.Context, task *DeleteTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal delete task: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取任务（阻塞），超时无任务返回 nil
func (q *DeleteRetryQueue) Pop(ctx context.Context, timeout time.Duration) (*DeleteTask, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 超时，无任务
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var task DeleteTask
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal delete task: %w", err)
	}

	return &task, nil
}

// Len 当前队列长度
func (q *DeleteRetryQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
