package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"

	"novelhub/moderation-service/internal/models"
)

// publishClient is the part of *redis.Client the publisher needs
type publishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisPublisher pushes notifications to per-user channels picked up by the websocket gateway
type RedisPublisher struct {
	client publishClient
}

// NewRedisPublisher connects to Redis and verifies the connection
func NewRedisPublisher(ctx context.Context, redisURL string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Redis 7 does not know the maint_notifications handshake
	opts.MaintNotificationsConfig = &maintnotifications.Config{
		Mode: maintnotifications.ModeDisabled,
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisPublisher{client: client}, nil
}

// UserChannel is the channel a user's live notifications are published on
func UserChannel(userID uint64) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// NotificationEvent is the payload published for each notification
type NotificationEvent struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	ObjectID    uint64 `json:"object_id"`
	RedirectURL string `json:"redirect_url"`
	CreatedAt   string `json:"created_at"`
}

// Dispatch publishes the notification to the recipient's channel
func (p *RedisPublisher) Dispatch(ctx context.Context, userID uint64, notification *models.Notification, redirectURL string) error {
	if notification == nil {
		return fmt.Errorf("notification is required")
	}

	event := NotificationEvent{
		ID:          notification.ID,
		Type:        notification.Type,
		Title:       notification.Title,
		Content:     notification.Content,
		ContentType: notification.ContentType,
		ObjectID:    notification.ObjectID,
		RedirectURL: redirectURL,
	}
	if !notification.CreatedAt.IsZero() {
		event.CreatedAt = notification.CreatedAt.UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, UserChannel(userID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
