package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"novelhub/moderation-service/internal/errs"
	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/internal/repository"
	"novelhub/moderation-service/pkg/helpers"
)

const CommentsPerPage = 10

type CommentService interface {
	CreateComment(ctx context.Context, userID uint64, novelSlug string, form models.CommentForm) (*models.Comment, error)
	ListNovelComments(ctx context.Context, novelSlug string, page int) ([]*models.CommentWithReplies, helpers.Page, error)
	DeleteComment(ctx context.Context, commentID, userID uint64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	novelRepo   repository.NovelRepository
	notifier    *ReplyNotifier
	validator   *helpers.CustomValidator
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewCommentService(commentRepo repository.CommentRepository, novelRepo repository.NovelRepository, notifier *ReplyNotifier, validator *helpers.CustomValidator, log logrus.FieldLogger) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		novelRepo:   novelRepo,
		notifier:    notifier,
		validator:   validator,
		log:         log,
		now:         time.Now,
	}
}

func (s *commentService) CreateComment(ctx context.Context, userID uint64, novelSlug string, form models.CommentForm) (*models.Comment, error) {
	novel, err := s.getNovel(ctx, novelSlug)
	if err != nil {
		return nil, err
	}

	form.Normalize()
	if err := validateForm(ctx, s.validator, form); err != nil {
		return nil, err
	}

	parent, thread, err := s.resolveParent(ctx, novel, form.ParentCommentID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:    userID,
		NovelID:   novel.ID,
		Content:   form.Content,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if thread != nil {
		comment.ParentCommentID = &thread.ID
	}

	created, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, errs.Storage("create comment", err)
	}

	// reload to pick up the author's username; the comment is already saved
	full, err := s.commentRepo.GetByID(ctx, created.ID)
	if err != nil {
		s.log.WithError(err).WithField("comment_id", created.ID).Warn("Failed to reload created comment")
	}
	if full == nil {
		full = created
	}

	if parent != nil && s.notifier != nil {
		s.notifier.NotifyReply(ctx, novel, parent, full)
	}
	return full, nil
}

func (s *commentService) ListNovelComments(ctx context.Context, novelSlug string, page int) ([]*models.CommentWithReplies, helpers.Page, error) {
	novel, err := s.getNovel(ctx, novelSlug)
	if err != nil {
		return nil, helpers.Page{}, err
	}

	total, err := s.commentRepo.CountTopLevel(ctx, novel.ID)
	if err != nil {
		return nil, helpers.Page{}, errs.Storage("count comments", err)
	}
	p := helpers.NewPage(page, CommentsPerPage, total)
	if total == 0 {
		return []*models.CommentWithReplies{}, p, nil
	}

	comments, err := s.commentRepo.ListTopLevel(ctx, novel.ID, p.PerPage, p.Offset())
	if err != nil {
		return nil, helpers.Page{}, errs.Storage("list comments", err)
	}

	ids := make([]uint64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	replies, err := s.commentRepo.ListReplies(ctx, ids)
	if err != nil {
		return nil, helpers.Page{}, errs.Storage("list replies", err)
	}

	byParent := make(map[uint64][]*models.Comment, len(comments))
	for _, r := range replies {
		if r.ParentCommentID != nil {
			byParent[*r.ParentCommentID] = append(byParent[*r.ParentCommentID], r)
		}
	}

	result := make([]*models.CommentWithReplies, 0, len(comments))
	for _, c := range comments {
		thread := &models.CommentWithReplies{Comment: *c, Replies: byParent[c.ID]}
		if thread.Replies == nil {
			thread.Replies = []*models.Comment{}
		}
		result = append(result, thread)
	}
	return result, p, nil
}

func (s *commentService) DeleteComment(ctx context.Context, commentID, userID uint64) error {
	ok, err := s.commentRepo.Deactivate(ctx, commentID, userID)
	if err != nil {
		return errs.Storage("delete comment", err)
	}
	if !ok {
		return errs.ErrNotFound
	}
	return nil
}

func (s *commentService) getNovel(ctx context.Context, slug string) (*models.Novel, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errs.ErrNotFound
	}
	novel, err := s.novelRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, errs.Storage("get novel", err)
	}
	if novel == nil {
		return nil, errs.ErrNotFound
	}
	return novel, nil
}

// maxThreadDepth bounds the walk from a reply up to its top-level comment
const maxThreadDepth = 8

// resolveParent returns the comment being answered and the top-level comment
// the reply is stored under. Threads are one level deep, so a reply to a
// reply joins its ancestor's thread. Both are nil when the parent or its
// ancestor is unknown, inactive or on another novel.
func (s *commentService) resolveParent(ctx context.Context, novel *models.Novel, parentID *uint64) (parent, thread *models.Comment, err error) {
	if parentID == nil || *parentID == 0 {
		return nil, nil, nil
	}

	parent, err = s.activeComment(ctx, novel, *parentID)
	if err != nil || parent == nil {
		return nil, nil, err
	}

	thread = parent
	for depth := 0; thread.IsReply(); depth++ {
		if depth == maxThreadDepth {
			return nil, nil, nil
		}
		thread, err = s.activeComment(ctx, novel, *thread.ParentCommentID)
		if err != nil || thread == nil {
			return nil, nil, err
		}
	}
	return parent, thread, nil
}

func (s *commentService) activeComment(ctx context.Context, novel *models.Novel, commentID uint64) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, errs.Storage("get parent comment", err)
	}
	if comment == nil || !comment.IsActive || comment.NovelID != novel.ID {
		return nil, nil
	}
	return comment, nil
}
