package models

import "time"

// Notification types
const (
	NotificationTypeReplyComment = "REPLY_COMMENT"
)

// ContentTypeComment identifies comments as notification targets
const ContentTypeComment = "interactions.comment"

// Notification is a persisted in-app notification
type Notification struct {
	ID          string    `db:"id" json:"id"`
	UserID      uint64    `db:"user_id" json:"user_id"`
	Type        string    `db:"type" json:"type"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	ContentType string    `db:"content_type" json:"content_type"`
	ObjectID    uint64    `db:"object_id" json:"object_id"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
