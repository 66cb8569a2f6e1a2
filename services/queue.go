package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"vkconnect/models"

	"github.com/go-redis/redis/v8"
)

const (
	NOTIFY_QUEUE       = "post_notify_queue"
	QUEUE_WORKER_COUNT = 5
)

// PostNotificationTask carries a freshly published post through the fan-out
// queue; workers resolve the author's followers and deliver per-user events.
type PostNotificationTask struct {
	Post models.Post `json:"post"`
}

type QueueService struct {
	followService *FollowService
}

func NewQueueService() *QueueService {
	return &QueueService{
		followService: NewFollowService(),
	}
}

// StartWorkers launches the fan-out workers
func (qs *QueueService) StartWorkers(ctx context.Context) {
	for i := 0; i < QUEUE_WORKER_COUNT; i++ {
		go qs.worker(ctx, i)
	}
}

func (qs *QueueService) worker(ctx context.Context, workerID int) {
	log.Printf("Notification worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Notification worker %d stopping", workerID)
			return
		default:
			result, err := RedisClient.BLPop(ctx, 5*time.Second, NOTIFY_QUEUE).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				log.Printf("Worker %d error getting task: %v", workerID, err)
				time.Sleep(time.Second)
				continue
			}

			if len(result) < 2 {
				continue
			}

			var task PostNotificationTask
			if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
				log.Printf("Worker %d error unmarshaling task: %v", workerID, err)
				continue
			}

			qs.fanOut(ctx, &task.Post)
		}
	}
}

// fanOut delivers a post-published event to every follower of the author,
// preferring the message broker and falling back to direct WebSocket push.
func (qs *QueueService) fanOut(ctx context.Context, post *models.Post) {
	followerIDs, err := qs.followService.FollowerIDs(ctx, post.AuthorID)
	if err != nil {
		log.Printf("Failed to load followers for user %d: %v", post.AuthorID, err)
		return
	}

	for _, followerID := range followerIDs {
		event := PostEvent{
			UserID:    followerID,
			PostID:    post.ID,
			AuthorID:  post.AuthorID,
			Type:      post.Type,
			Title:     post.Title,
			CreatedAt: post.CreatedAt,
		}
		if err := PublishPostEvent(ctx, event); err != nil {
			sendPostEventDirect(event)
		}
	}
}

// notifyFollowersDirect is the synchronous fallback used when the queue is
// not available.
func notifyFollowersDirect(ctx context.Context, post models.Post) {
	qs := NewQueueService()
	qs.fanOut(ctx, &post)
}

// EnqueuePostNotification queues the fan-out for a newly created post.
func (qs *QueueService) EnqueuePostNotification(ctx context.Context, post models.Post) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}

	task := PostNotificationTask{Post: post}
	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := RedisClient.RPush(ctx, NOTIFY_QUEUE, taskData).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// GetQueueStats returns the pending fan-out queue length
func (qs *QueueService) GetQueueStats(ctx context.Context) (int64, error) {
	if RedisClient == nil {
		return 0, fmt.Errorf("redis not available")
	}
	return RedisClient.LLen(ctx, NOTIFY_QUEUE).Result()
}
