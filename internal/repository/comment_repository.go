package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"novelhub/moderation-service/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, commentID uint64) (*models.Comment, error)
	CountTopLevel(ctx context.Context, novelID uint64) (int64, error)
	ListTopLevel(ctx context.Context, novelID uint64, limit, offset int) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentIDs []uint64) ([]*models.Comment, error)
	Deactivate(ctx context.Context, commentID, userID uint64) (bool, error)
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentColumns = `c.id, c.user_id, u.username, c.novel_id, c.content, c.parent_comment_id, c.is_active, c.like_count, c.created_at`

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	query := `
		INSERT INTO comments (user_id, novel_id, content, parent_comment_id, is_active, like_count, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`

	var parentID sql.NullInt64
	if comment.ParentCommentID != nil {
		parentID = sql.NullInt64{Int64: int64(*comment.ParentCommentID), Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		comment.UserID,
		comment.NovelID,
		comment.Content,
		parentID,
		comment.IsActive,
		comment.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	comment.ID = uint64(id)
	return comment, nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID uint64) (*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		INNER JOIN users u ON u.id = c.user_id
		WHERE c.id = ?
	`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, commentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

func (r *commentRepository) CountTopLevel(ctx context.Context, novelID uint64) (int64, error) {
	query := `
		SELECT COUNT(*) FROM comments
		WHERE novel_id = ? AND parent_comment_id IS NULL AND is_active = 1
	`

	var total int64
	if err := r.db.QueryRowContext(ctx, query, novelID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return total, nil
}

func (r *commentRepository) ListTopLevel(ctx context.Context, novelID uint64, limit, offset int) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		INNER JOIN users u ON u.id = c.user_id
		WHERE c.novel_id = ? AND c.parent_comment_id IS NULL AND c.is_active = 1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, novelID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return collectComments(rows)
}

// ListReplies returns active replies to any of the given parents, oldest first
func (r *commentRepository) ListReplies(ctx context.Context, parentIDs []uint64) ([]*models.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	query, args, err := builder.Select(commentColumns).
		From("comments c").
		Join("users u ON u.id = c.user_id").
		Where(sq.Eq{"c.parent_comment_id": parentIDs}).
		Where(sq.Eq{"c.is_active": true}).
		OrderBy("c.created_at ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build replies query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	return collectComments(rows)
}

// Deactivate soft-deletes a comment owned by userID. It returns false when
// no such comment exists.
func (r *commentRepository) Deactivate(ctx context.Context, commentID, userID uint64) (bool, error) {
	query := `UPDATE comments SET is_active = 0 WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete comment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	// an already inactive comment matches but reports zero changed rows
	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM comments WHERE id = ? AND user_id = ?)`, commentID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check comment owner: %w", err)
	}
	return exists, nil
}

func collectComments(rows *sql.Rows) ([]*models.Comment, error) {
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	var parentID sql.NullInt64

	if err := row.Scan(
		&comment.ID, &comment.UserID, &comment.Username, &comment.NovelID, &comment.Content,
		&parentID, &comment.IsActive, &comment.LikeCount, &comment.CreatedAt,
	); err != nil {
		return nil, err
	}

	comment.ParentCommentID = uint64Ptr(parentID)
	return &comment, nil
}
