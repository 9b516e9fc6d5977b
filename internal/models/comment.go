package models

import (
	"strings"
	"time"
)

// Comment on a novel; a reply has a parent
type Comment struct {
	ID              uint64    `db:"id" json:"id"`
	UserID          uint64    `db:"user_id" json:"user_id"`
	Username        string    `json:"username"`
	NovelID         uint64    `db:"novel_id" json:"novel_id"`
	Content         string    `db:"content" json:"content"`
	ParentCommentID *uint64   `db:"parent_comment_id" json:"parent_comment_id,omitempty"`
	IsActive        bool      `db:"is_active" json:"-"`
	LikeCount       int64     `db:"like_count" json:"like_count"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// IsReply reports whether the comment answers another one
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// CommentWithReplies is a top-level comment with its active replies, oldest first
type CommentWithReplies struct {
	Comment
	Replies []*Comment `json:"replies"`
}

// CommentForm is the payload for posting a comment or a reply
type CommentForm struct {
	Content         string  `json:"content" form:"content" validate:"required,notblank,max=2000"`
	ParentCommentID *uint64 `json:"parent_comment_id" form:"parent_comment_id"`
}

// Normalize trims the content
func (f *CommentForm) Normalize() {
	f.Content = strings.TrimSpace(f.Content)
}
