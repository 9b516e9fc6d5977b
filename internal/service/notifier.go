package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/internal/repository"
	"novelhub/moderation-service/pkg/metrics"
)

const (
	replyNotificationTitle = "Bình luận của bạn được trả lời"
	replyPreviewRunes      = 50
	defaultDispatchTimeout = 3 * time.Second
)

// Notification results reported to metrics
const (
	notificationSent           = "sent"
	notificationStored         = "stored"
	notificationSkipped        = "skipped"
	notificationRecordFailed   = "record_failed"
	notificationDispatchFailed = "dispatch_failed"
)

// Dispatcher pushes a stored notification to the user's live channel
type Dispatcher interface {
	Dispatch(ctx context.Context, userID uint64, notification *models.Notification, redirectURL string) error
}

// ReplyNotifier tells a comment author that someone answered them.
// Failures are logged and never returned to the caller.
type ReplyNotifier struct {
	notifications repository.NotificationRepository
	dispatcher    Dispatcher
	metrics       *metrics.Metrics
	log           logrus.FieldLogger
	timeout       time.Duration
	now           func() time.Time
}

// NewReplyNotifier creates a notifier; dispatcher may be nil when no push channel is configured
func NewReplyNotifier(notifications repository.NotificationRepository, dispatcher Dispatcher, m *metrics.Metrics, log logrus.FieldLogger) *ReplyNotifier {
	return &ReplyNotifier{
		notifications: notifications,
		dispatcher:    dispatcher,
		metrics:       m,
		log:           log,
		timeout:       defaultDispatchTimeout,
		now:           time.Now,
	}
}

// NotifyReply records and dispatches a REPLY_COMMENT notification for the parent's author
func (n *ReplyNotifier) NotifyReply(ctx context.Context, novel *models.Novel, parent, reply *models.Comment) {
	if parent == nil || reply == nil || parent.UserID == reply.UserID {
		n.metrics.ObserveNotification(notificationSkipped)
		return
	}

	log := n.log.WithFields(logrus.Fields{
		"recipient_id": parent.UserID,
		"comment_id":   reply.ID,
		"parent_id":    parent.ID,
	})

	notification, err := n.notifications.Create(ctx, &models.Notification{
		UserID:      parent.UserID,
		Type:        models.NotificationTypeReplyComment,
		Title:       replyNotificationTitle,
		Content:     fmt.Sprintf("%s đã trả lời bình luận của bạn: '%s…'", reply.Username, previewText(reply.Content, replyPreviewRunes)),
		ContentType: models.ContentTypeComment,
		ObjectID:    reply.ID,
		CreatedAt:   n.now(),
	})
	if err != nil {
		n.metrics.ObserveNotification(notificationRecordFailed)
		log.WithError(err).Warn("Failed to record reply notification")
		return
	}

	// recorded only; the user sees it on their next page load
	if n.dispatcher == nil {
		n.metrics.ObserveNotification(notificationStored)
		return
	}

	dctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.dispatcher.Dispatch(dctx, parent.UserID, notification, commentRedirectURL(novel, parent.ID)); err != nil {
		n.metrics.ObserveNotification(notificationDispatchFailed)
		log.WithError(err).Warn("Failed to dispatch reply notification")
		return
	}
	n.metrics.ObserveNotification(notificationSent)
}

func commentRedirectURL(novel *models.Novel, commentID uint64) string {
	slug := ""
	if novel != nil {
		slug = novel.Slug
	}
	return fmt.Sprintf("/novels/%s/#comment-%d", slug, commentID)
}

// previewText strips markup, collapses whitespace and keeps the first max runes
func previewText(content string, max int) string {
	text := content
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(content)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	if utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max])
}
