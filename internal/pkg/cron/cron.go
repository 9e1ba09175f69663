package cron

import (
	"context"
	"log"
	"time"

	"github.com/qs3c/paywall_go_server/internal/pkg/queue"
	"github.com/qs3c/paywall_go_server/internal/repository"
)

// BlobStore 清理任务需要的云存储能力
type BlobStore interface {
	Delete(objectKey string) error
	ExtractObjectKey(url string) string
}

// maxDeleteAttempts 超过该次数的删除任务丢弃并记日志，避免坏任务无限循环
const maxDeleteAttempts = 5

type Service struct {
	contentRepo *repository.ContentRepository
	blobStore   BlobStore
	retryQueue  *queue.DeleteRetryQueue
	stopChan    chan struct{}
}

func NewService(
	contentRepo *repository.ContentRepository,
	blobStore BlobStore,
	retryQueue *queue.DeleteRetryQueue,
) *Service {
	return &Service{
		contentRepo: contentRepo,
		blobStore:   blobStore,
		retryQueue:  retryQueue,
		stopChan:    make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDailySweep()
	go s.runDeleteRetry()
	log.Println("Cron service started (expiry sweep + delete retry)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runDailySweep 每日 02:00 UTC 执行过期内容清理
func (s *Service) runDailySweep() {
	now := time.Now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), 2, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	timer := time.NewTimer(next.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			if _, err := s.SweepExpired(time.Now().UTC()); err != nil {
				log.Printf("Expiry sweep failed: %v", err)
			}
			timer.Reset(24 * time.Hour)
		}
	}
}

// runDeleteRetry 每小时消费一轮删除重试队列
func (s *Service) runDeleteRetry() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.DrainDeleteRetries()
		}
	}
}

// SweepExpired 下线所有已过期的内容并删除对应媒体文件。
// 媒体删除失败不阻塞下线，失败的删除进入重试队列。
func (s *Service) SweepExpired(now time.Time) (int, error) {
	expired, err := s.contentRepo.ListExpired(now)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, content := range expired {
		if err := s.contentRepo.Deactivate(content.ID); err != nil {
			log.Printf("Sweep: failed to deactivate content %s: %v", content.ID, err)
			continue
		}
		swept++

		s.deleteBlob(content.ID, content.FileURL)
	}

	if swept > 0 {
		log.Printf("Expiry sweep: deactivated %d contents", swept)
	}
	return swept, nil
}

// deleteBlob 尽力删除媒体文件，失败入重试队列
func (s *Service) deleteBlob(contentID, fileURL string) {
	if s.blobStore == nil || fileURL == "" {
		return
	}

	objectKey := s.blobStore.ExtractObjectKey(fileURL)
	if err := s.blobStore.Delete(objectKey); err != nil {
		log.Printf("Sweep: failed to delete media for content %s: %v", contentID, err)
		s.enqueueRetry(&queue.DeleteTask{
			ContentID: contentID,
			ObjectKey: objectKey,
			Attempts:  1,
		})
	}
}

// DrainDeleteRetries 将重试队列消费到空为止
func (s *Service) DrainDeleteRetries() {
	if s.retryQueue == nil || s.blobStore == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for {
		task, err := s.retryQueue.Pop(ctx, 1*time.Second)
		if err != nil {
			log.Printf("Delete retry: failed to pop task: %v", err)
			return
		}
		if task == nil {
			return
		}

		if err := s.blobStore.Delete(task.ObjectKey); err != nil {
			task.Attempts++
			if task.Attempts > maxDeleteAttempts {
				log.Printf("Delete retry: giving up on %s after %d attempts", task.ObjectKey, task.Attempts)
				continue
			}
			if err := s.enqueueRetry(task); err != nil {
				return
			}
			// 本轮其余任务大概率同样失败，留给下一轮
			return
		}
	}
}

func (s *Service) enqueueRetry(task *queue.DeleteTask) error {
	if s.retryQueue == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.retryQueue.Push(ctx, task); err != nil {
		log.Printf("Delete retry: failed to enqueue %s: %v", task.ObjectKey, err)
		return err
	}
	return nil
}
