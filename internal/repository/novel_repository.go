package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"novelhub/moderation-service/internal/models"
)

type NovelRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Novel, error)
	ListUsingRequest(ctx context.Context, kind models.PersonKind, requestID uint64) ([]*models.Novel, error)
	ListByPerson(ctx context.Context, kind models.PersonKind, personID uint64) ([]*models.Novel, error)
}

type novelRepository struct {
	db *sql.DB
}

func NewNovelRepository(db *sql.DB) NovelRepository {
	return &novelRepository{db: db}
}

const novelColumns = `id, name, slug, author_id, artist_id, pending_author_request_id, pending_artist_request_id`

func (r *novelRepository) GetBySlug(ctx context.Context, slug string) (*models.Novel, error) {
	query := `SELECT ` + novelColumns + ` FROM novels WHERE slug = ?`

	novel, err := scanNovel(r.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get novel: %w", err)
	}
	return novel, nil
}

// ListUsingRequest returns novels still waiting on the request
func (r *novelRepository) ListUsingRequest(ctx context.Context, kind models.PersonKind, requestID uint64) ([]*models.Novel, error) {
	return r.listWhere(ctx, kind.PendingColumn(), requestID)
}

// ListByPerson returns novels linked to an approved author or artist
func (r *novelRepository) ListByPerson(ctx context.Context, kind models.PersonKind, personID uint64) ([]*models.Novel, error) {
	return r.listWhere(ctx, kind.NovelColumn(), personID)
}

func (r *novelRepository) listWhere(ctx context.Context, column string, id uint64) ([]*models.Novel, error) {
	query := fmt.Sprintf(`SELECT %s FROM novels WHERE %s = ? ORDER BY name ASC`, novelColumns, column)

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list novels: %w", err)
	}
	defer rows.Close()

	var novels []*models.Novel
	for rows.Next() {
		novel, err := scanNovel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan novel: %w", err)
		}
		novels = append(novels, novel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating novels: %w", err)
	}
	return novels, nil
}

// ReconcileDependents repoints every novel waiting on the request to the
// canonical entity and clears the pending reference. It must run inside the
// approval transaction and returns the number of novels updated.
func ReconcileDependents(ctx context.Context, tx DBTX, kind models.PersonKind, entityID, requestID uint64, at time.Time) (int64, error) {
	query := fmt.Sprintf(
		`UPDATE novels SET %s = ?, %s = NULL, updated_at = ? WHERE %s = ?`,
		kind.NovelColumn(), kind.PendingColumn(), kind.PendingColumn(),
	)

	result, err := tx.ExecContext(ctx, query, entityID, at, requestID)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile novels: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected, nil
}

func scanNovel(row rowScanner) (*models.Novel, error) {
	var novel models.Novel
	var authorID, artistID, pendingAuthor, pendingArtist sql.NullInt64

	if err := row.Scan(
		&novel.ID, &novel.Name, &novel.Slug,
		&authorID, &artistID, &pendingAuthor, &pendingArtist,
	); err != nil {
		return nil, err
	}

	novel.AuthorID = uint64Ptr(authorID)
	novel.ArtistID = uint64Ptr(artistID)
	novel.PendingAuthorRequestID = uint64Ptr(pendingAuthor)
	novel.PendingArtistRequestID = uint64Ptr(pendingArtist)
	return &novel, nil
}
