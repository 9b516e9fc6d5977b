package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"novelhub/moderation-service/internal/models"
)

type RequestRepository interface {
	Create(ctx context.Context, req *models.Request) (*models.Request, error)
	GetByID(ctx context.Context, requestID uint64) (*models.RequestWithUser, error)
	Count(ctx context.Context, filter models.RequestFilter) (int64, error)
	List(ctx context.Context, filter models.RequestFilter, limit, offset int) ([]*models.RequestWithUser, error)
	MarkProcessed(ctx context.Context, requestID, adminID uint64, note string, at time.Time) (bool, error)
	Statistics(ctx context.Context, dayStart, dayEnd time.Time) (*models.RequestStatistics, error)
}

type requestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) RequestRepository {
	return &requestRepository{db: db}
}

const requestColumns = `r.id, r.user_id, r.title, r.content, r.status, r.admin_note,
	r.processed_by, r.processed_at, r.created_at, r.updated_at,
	u.username, u.email, p.username`

func (r *requestRepository) Create(ctx context.Context, req *models.Request) (*models.Request, error) {
	query := `
		INSERT INTO requests (user_id, title, content, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		req.UserID,
		req.Title,
		req.Content,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	req.ID = uint64(id)
	return req, nil
}

func (r *requestRepository) GetByID(ctx context.Context, requestID uint64) (*models.RequestWithUser, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests r
		INNER JOIN users u ON u.id = r.user_id
		LEFT JOIN users p ON p.id = r.processed_by
		WHERE r.id = ?
	`

	req, err := scanRequest(r.db.QueryRowContext(ctx, query, requestID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

func (r *requestRepository) Count(ctx context.Context, filter models.RequestFilter) (int64, error) {
	query, args, err := applyRequestFilter(
		builder.Select("COUNT(*)").
			From("requests r").
			Join("users u ON u.id = r.user_id"),
		filter,
	).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count requests: %w", err)
	}
	return total, nil
}

func (r *requestRepository) List(ctx context.Context, filter models.RequestFilter, limit, offset int) ([]*models.RequestWithUser, error) {
	b := applyRequestFilter(
		builder.Select(requestColumns).
			From("requests r").
			Join("users u ON u.id = r.user_id").
			LeftJoin("users p ON p.id = r.processed_by"),
		filter,
	)

	orderBy := filter.OrderBy
	if len(orderBy) == 0 {
		orderBy = models.RequestOrderBy(models.DefaultRequestSort)
	}

	query, args, err := b.OrderBy(orderBy...).
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.RequestWithUser, 0, limit)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	return requests, nil
}

// MarkProcessed closes a pending request. It returns false when the request
// was not pending anymore, so only one of two concurrent processors wins.
func (r *requestRepository) MarkProcessed(ctx context.Context, requestID, adminID uint64, note string, at time.Time) (bool, error) {
	query := `
		UPDATE requests
		SET status = ?, processed_by = ?, processed_at = ?, admin_note = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		models.RequestStatusProcessed,
		adminID,
		at,
		nullString(note),
		at,
		requestID,
		models.RequestStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to process request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected == 1, nil
}

func (r *requestRepository) Statistics(ctx context.Context, dayStart, dayEnd time.Time) (*models.RequestStatistics, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(status = ?), 0),
			COALESCE(SUM(status = ?), 0),
			COALESCE(SUM(created_at >= ? AND created_at < ?), 0)
		FROM requests
	`

	var stats models.RequestStatistics
	err := r.db.QueryRowContext(ctx, query,
		models.RequestStatusPending,
		models.RequestStatusProcessed,
		dayStart,
		dayEnd,
	).Scan(&stats.Total, &stats.Pending, &stats.Processed, &stats.CreatedToday)
	if err != nil {
		return nil, fmt.Errorf("failed to get request statistics: %w", err)
	}
	return &stats, nil
}

func applyRequestFilter(b sq.SelectBuilder, f models.RequestFilter) sq.SelectBuilder {
	if f.UserID != nil {
		b = b.Where(sq.Eq{"r.user_id": *f.UserID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"r.status": f.Status})
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		or := sq.Or{
			sq.Like{"r.title": pattern},
			sq.Like{"r.content": pattern},
		}
		if f.SearchUsers {
			or = append(or, sq.Like{"u.username": pattern}, sq.Like{"u.email": pattern})
		}
		b = b.Where(or)
	}
	if f.User != "" {
		pattern := containsPattern(f.User)
		b = b.Where(sq.Or{
			sq.Like{"u.username": pattern},
			sq.Like{"u.email": pattern},
		})
	}
	if f.CreatedFrom != nil {
		b = b.Where(sq.GtOrEq{"r.created_at": *f.CreatedFrom})
	}
	if f.CreatedBefore != nil {
		b = b.Where(sq.Lt{"r.created_at": *f.CreatedBefore})
	}
	return b
}

func scanRequest(row rowScanner) (*models.RequestWithUser, error) {
	var req models.RequestWithUser
	var adminNote, processorName sql.NullString
	var processedBy sql.NullInt64
	var processedAt sql.NullTime

	err := row.Scan(
		&req.ID, &req.UserID, &req.Title, &req.Content, &req.Status, &adminNote,
		&processedBy, &processedAt, &req.CreatedAt, &req.UpdatedAt,
		&req.Username, &req.Email, &processorName,
	)
	if err != nil {
		return nil, err
	}

	req.AdminNote = adminNote.String
	req.ProcessedBy = uint64Ptr(processedBy)
	req.ProcessedAt = timePtr(processedAt)
	req.ProcessedByUsername = stringPtr(processorName)
	return &req, nil
}
