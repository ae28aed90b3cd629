package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alerts/internal/models"
)

const (
	webhookQueueKey = "alert_webhook_events"
)

// Queue - операции Redis-списка, которыми пользуются издатель и воркер
type Queue interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// RedisWebhookPublisher ставит события алертов в очередь вебхуков.
// Реализует broadcast.Sink и подключается к хабу через Relay.
type RedisWebhookPublisher struct {
	queue Queue
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(queue Queue) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		queue: queue,
	}
}

// Publish публикует событие в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event models.AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH добавляет в голову списка, воркер забирает с хвоста
	if err := p.queue.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
