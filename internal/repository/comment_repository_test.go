package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub/moderation-service/internal/models"
)

var commentRowColumns = []string{"id", "user_id", "username", "novel_id", "content", "parent_comment_id", "is_active", "like_count", "created_at"}

func TestCommentRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCommentRepository(db)

	parentID := uint64(40)
	mock.ExpectExec(`INSERT INTO comments`).
		WithArgs(uint64(2), uint64(8), "Agreed!", int64(40), true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(41, 1))

	comment, err := repo.Create(context.Background(), &models.Comment{
		UserID:          2,
		NovelID:         8,
		Content:         "Agreed!",
		ParentCommentID: &parentID,
		IsActive:        true,
		CreatedAt:       time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(41), comment.ID)
	assert.True(t, comment.IsReply())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListReplies(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCommentRepository(db)

	mock.ExpectQuery(`FROM comments c JOIN users u ON u\.id = c\.user_id WHERE c\.parent_comment_id IN \(\?,\?\) AND c\.is_active = \? ORDER BY c\.created_at ASC, c\.id ASC`).
		WithArgs(uint64(1), uint64(2), true).
		WillReturnRows(sqlmock.NewRows(commentRowColumns).
			AddRow(5, 3, "bob", 8, "reply one", 1, true, 0, time.Now()).
			AddRow(6, 4, "eve", 8, "reply two", 2, true, 1, time.Now()))

	replies, err := repo.ListReplies(context.Background(), []uint64{1, 2})
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, uint64(1), *replies[0].ParentCommentID)
	assert.Equal(t, "eve", replies[1].Username)
	assert.NoError(t, mock.ExpectationsWereMet())

	none, err := repo.ListReplies(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestCommentRepository_ListTopLevel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCommentRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM comments WHERE novel_id = \? AND parent_comment_id IS NULL AND is_active = 1`).
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	mock.ExpectQuery(`WHERE c\.novel_id = \? AND c\.parent_comment_id IS NULL AND c\.is_active = 1 ORDER BY c\.created_at DESC`).
		WithArgs(uint64(8), 10, 0).
		WillReturnRows(sqlmock.NewRows(commentRowColumns).AddRow(1, 2, "ann", 8, "first!", nil, true, 3, time.Now()))

	total, err := repo.CountTopLevel(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	comments, err := repo.ListTopLevel(context.Background(), 8, 10, 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.False(t, comments[0].IsReply())
	assert.Equal(t, int64(3), comments[0].LikeCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_Deactivate(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		want      bool
	}{
		{
			name: "own comment",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE comments SET is_active = 0 WHERE id = \? AND user_id = \?`).
					WithArgs(uint64(5), uint64(2)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: true,
		},
		{
			name: "already deleted own comment",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE comments`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(uint64(5), uint64(2)).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "someone else's comment",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE comments`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			repo := NewCommentRepository(db)

			tt.setupMock(mock)

			ok, err := repo.Deactivate(context.Background(), 5, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
