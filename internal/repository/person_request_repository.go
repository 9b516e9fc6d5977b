package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"novelhub/moderation-service/internal/errs"
	"novelhub/moderation-service/internal/models"
)

// PersonRequestRepository stores author and artist proposals. Every method
// takes the kind, which selects the tables involved.
type PersonRequestRepository interface {
	Create(ctx context.Context, req *models.PersonRequest) (*models.PersonRequest, error)
	GetByID(ctx context.Context, kind models.PersonKind, requestID uint64) (*models.PersonRequest, error)
	Count(ctx context.Context, kind models.PersonKind, filter models.PersonRequestFilter) (int64, error)
	List(ctx context.Context, kind models.PersonKind, filter models.PersonRequestFilter, limit, offset int) ([]*models.PersonRequest, error)
	EntityNameExists(ctx context.Context, kind models.PersonKind, name string) (bool, error)
	Approve(ctx context.Context, kind models.PersonKind, requestID, approverID uint64, at time.Time) (*models.ApprovalResult, error)
	Reject(ctx context.Context, kind models.PersonKind, requestID uint64, reason string, at time.Time) (*models.PersonRequest, error)
}

type personRequestRepository struct {
	db *sql.DB
}

func NewPersonRequestRepository(db *sql.DB) PersonRequestRepository {
	return &personRequestRepository{db: db}
}

func personRequestColumns(kind models.PersonKind, alias string) []string {
	cols := []string{
		"id", "name", "pen_name", "description", "birthday", "deathday", "gender", "country", "image_url",
		"created_by", "approval_status", "rejected_reason", "approved_by", kind.CreatedColumn(),
		"created_at", "updated_at",
	}
	if alias == "" {
		return cols
	}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return cols
}

func (r *personRequestRepository) Create(ctx context.Context, req *models.PersonRequest) (*models.PersonRequest, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, pen_name, description, birthday, deathday, gender, country, image_url,
			created_by, approval_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, req.Kind.RequestTable())

	result, err := r.db.ExecContext(ctx, query,
		req.Name,
		nullString(req.PenName),
		nullString(req.Description),
		nullTime(req.Birthday),
		nullTime(req.Deathday),
		nullString(string(req.Gender)),
		nullString(req.Country),
		nullString(req.ImageURL),
		req.CreatedBy,
		req.ApprovalStatus,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", req.Kind, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	req.ID = uint64(id)
	return req, nil
}

func (r *personRequestRepository) GetByID(ctx context.Context, kind models.PersonKind, requestID uint64) (*models.PersonRequest, error) {
	query, args, err := builder.Select(personRequestColumns(kind, "pr")...).
		Column("u.username").
		From(kind.RequestTable() + " pr").
		Join("users u ON u.id = pr.created_by").
		Where(sq.Eq{"pr.id": requestID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	req, err := scanPersonRequest(r.db.QueryRowContext(ctx, query, args...), kind, true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s request: %w", kind, err)
	}
	return req, nil
}

func (r *personRequestRepository) Count(ctx context.Context, kind models.PersonKind, filter models.PersonRequestFilter) (int64, error) {
	query, args, err := applyPersonRequestFilter(
		builder.Select("COUNT(*)").
			From(kind.RequestTable()+" pr").
			Join("users u ON u.id = pr.created_by"),
		filter,
	).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count %s requests: %w", kind, err)
	}
	return total, nil
}

func (r *personRequestRepository) List(ctx context.Context, kind models.PersonKind, filter models.PersonRequestFilter, limit, offset int) ([]*models.PersonRequest, error) {
	query, args, err := applyPersonRequestFilter(
		builder.Select(personRequestColumns(kind, "pr")...).
			Column("u.username").
			From(kind.RequestTable()+" pr").
			Join("users u ON u.id = pr.created_by"),
		filter,
	).OrderBy("pr.created_at DESC", "pr.id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s requests: %w", kind, err)
	}
	defer rows.Close()

	requests := make([]*models.PersonRequest, 0, limit)
	for rows.Next() {
		req, err := scanPersonRequest(rows, kind, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s request: %w", kind, err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s requests: %w", kind, err)
	}
	return requests, nil
}

func (r *personRequestRepository) EntityNameExists(ctx context.Context, kind models.PersonKind, name string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE name = ?)`, kind.EntityTable())

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s name: %w", kind, err)
	}
	return exists, nil
}

// Approve runs the whole approval in one transaction: lock the request,
// check its state, resolve the canonical entity, mark the request approved
// and repoint dependent novels.
func (r *personRequestRepository) Approve(ctx context.Context, kind models.PersonKind, requestID, approverID uint64, at time.Time) (*models.ApprovalResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := lockPersonRequest(ctx, tx, kind, requestID)
	if err != nil {
		return nil, err
	}

	switch req.ApprovalStatus {
	case models.ApprovalStatusPending:
	case models.ApprovalStatusApproved:
		return nil, errs.ErrAlreadyApproved
	default:
		return nil, fmt.Errorf("%w: cannot approve a %s request", errs.ErrInvalidTransition, req.ApprovalStatus)
	}

	entity, reused, err := ResolvePerson(ctx, tx, kind, req.PersonProfile, at)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET approval_status = ?, approved_by = ?, %s = ?, updated_at = ?
		WHERE id = ? AND approval_status = ?
	`, kind.RequestTable(), kind.CreatedColumn())

	result, err := tx.ExecContext(ctx, query,
		models.ApprovalStatusApproved,
		approverID,
		entity.ID,
		at,
		requestID,
		models.ApprovalStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to approve %s request: %w", kind, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected != 1 {
		return nil, errs.ErrAlreadyApproved
	}

	updated, err := ReconcileDependents(ctx, tx, kind, entity.ID, requestID, at)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	req.ApprovalStatus = models.ApprovalStatusApproved
	req.ApprovedBy = &approverID
	req.CreatedEntityID = &entity.ID
	req.UpdatedAt = at

	return &models.ApprovalResult{
		Request:       req,
		Entity:        entity,
		Reused:        reused,
		NovelsUpdated: updated,
		Message:       models.ApprovalMessage(kind, entity.Name, reused),
	}, nil
}

func (r *personRequestRepository) Reject(ctx context.Context, kind models.PersonKind, requestID uint64, reason string, at time.Time) (*models.PersonRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := lockPersonRequest(ctx, tx, kind, requestID)
	if err != nil {
		return nil, err
	}

	switch req.ApprovalStatus {
	case models.ApprovalStatusPending:
	case models.ApprovalStatusApproved:
		return nil, errs.ErrAlreadyApproved
	default:
		return nil, fmt.Errorf("%w: cannot reject a %s request", errs.ErrInvalidTransition, req.ApprovalStatus)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET approval_status = ?, rejected_reason = ?, updated_at = ?
		WHERE id = ? AND approval_status = ?
	`, kind.RequestTable())

	if _, err := tx.ExecContext(ctx, query,
		models.ApprovalStatusRejected,
		reason,
		at,
		requestID,
		models.ApprovalStatusPending,
	); err != nil {
		return nil, fmt.Errorf("failed to reject %s request: %w", kind, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %w", err)
	}

	req.ApprovalStatus = models.ApprovalStatusRejected
	req.RejectedReason = reason
	req.UpdatedAt = at
	return req, nil
}

// ResolvePerson finds or creates the canonical entity named like profile.
// The insert relies on UNIQUE(name): on a duplicate key, LAST_INSERT_ID is
// set to the existing row, so concurrent approvals converge on one row.
// The boolean reports whether an existing entity was reused.
func ResolvePerson(ctx context.Context, tx DBTX, kind models.PersonKind, profile models.PersonProfile, at time.Time) (*models.Person, bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, pen_name, description, birthday, deathday, gender, country, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
	`, kind.EntityTable())

	result, err := tx.ExecContext(ctx, query,
		profile.Name,
		nullString(profile.PenName),
		nullString(profile.Description),
		nullTime(profile.Birthday),
		nullTime(profile.Deathday),
		nullString(string(profile.Gender)),
		nullString(profile.Country),
		nullString(profile.ImageURL),
		at,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve %s: %w", kind, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s id: %w", kind, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	// 1 means inserted, 0 means the duplicate row was left as is
	if affected == 1 {
		return &models.Person{ID: uint64(id), Kind: kind, PersonProfile: profile, CreatedAt: at}, false, nil
	}

	existing, err := getPerson(ctx, tx, kind, uint64(id))
	if err != nil {
		return nil, false, err
	}
	return existing, true, nil
}

func getPerson(ctx context.Context, q DBTX, kind models.PersonKind, id uint64) (*models.Person, error) {
	query := fmt.Sprintf(`
		SELECT id, name, pen_name, description, birthday, deathday, gender, country, image_url, created_at
		FROM %s WHERE id = ?
	`, kind.EntityTable())

	var person models.Person
	var penName, description, gender, country, imageURL sql.NullString
	var birthday, deathday sql.NullTime

	err := q.QueryRowContext(ctx, query, id).Scan(
		&person.ID, &person.Name, &penName, &description, &birthday, &deathday,
		&gender, &country, &imageURL, &person.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %d: %w", kind, id, err)
	}

	person.Kind = kind
	person.PenName = penName.String
	person.Description = description.String
	person.Birthday = timePtr(birthday)
	person.Deathday = timePtr(deathday)
	person.Gender = models.Gender(gender.String)
	person.Country = country.String
	person.ImageURL = imageURL.String
	return &person, nil
}

func lockPersonRequest(ctx context.Context, tx DBTX, kind models.PersonKind, requestID uint64) (*models.PersonRequest, error) {
	query, args, err := builder.Select(personRequestColumns(kind, "")...).
		From(kind.RequestTable()).
		Where(sq.Eq{"id": requestID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	req, err := scanPersonRequest(tx.QueryRowContext(ctx, query, args...), kind, false)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s request: %w", kind, err)
	}
	return req, nil
}

func applyPersonRequestFilter(b sq.SelectBuilder, f models.PersonRequestFilter) sq.SelectBuilder {
	if f.CreatedBy != nil {
		b = b.Where(sq.Eq{"pr.created_by": *f.CreatedBy})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"pr.approval_status": f.Status})
	}
	if f.Gender != "" {
		b = b.Where(sq.Eq{"pr.gender": f.Gender})
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		b = b.Where(sq.Or{
			sq.Like{"pr.name": pattern},
			sq.Like{"pr.pen_name": pattern},
		})
	}
	if f.Creator != "" {
		pattern := containsPattern(f.Creator)
		b = b.Where(sq.Or{
			sq.Like{"u.username": pattern},
			sq.Like{"u.email": pattern},
		})
	}
	return b
}

func scanPersonRequest(row rowScanner, kind models.PersonKind, withCreator bool) (*models.PersonRequest, error) {
	req := models.PersonRequest{Kind: kind}
	var penName, description, gender, country, imageURL, rejectedReason sql.NullString
	var birthday, deathday sql.NullTime
	var approvedBy, createdEntity sql.NullInt64

	dest := []interface{}{
		&req.ID, &req.Name, &penName, &description, &birthday, &deathday, &gender, &country, &imageURL,
		&req.CreatedBy, &req.ApprovalStatus, &rejectedReason, &approvedBy, &createdEntity,
		&req.CreatedAt, &req.UpdatedAt,
	}
	if withCreator {
		dest = append(dest, &req.CreatorUsername)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	req.PenName = penName.String
	req.Description = description.String
	req.Birthday = timePtr(birthday)
	req.Deathday = timePtr(deathday)
	req.Gender = models.Gender(gender.String)
	req.Country = country.String
	req.ImageURL = imageURL.String
	req.RejectedReason = rejectedReason.String
	req.ApprovedBy = uint64Ptr(approvedBy)
	req.CreatedEntityID = uint64Ptr(createdEntity)
	return &req, nil
}
