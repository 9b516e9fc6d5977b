package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub/moderation-service/internal/errs"
	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/pkg/auth"
)

func newTestRequestService(repo *mockRequestRepository, loc *time.Location, now time.Time) *requestService {
	svc := NewRequestService(repo, NewValidator(), nil, loc).(*requestService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestRequestService_CreateRequest(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	t.Run("valid request is created pending", func(t *testing.T) {
		repo := &mockRequestRepository{
			createFunc: func(ctx context.Context, req *models.Request) (*models.Request, error) {
				req.ID = 7
				return req, nil
			},
		}
		svc := newTestRequestService(repo, time.UTC, now)

		req, err := svc.CreateRequest(ctx, 3, models.CreateRequestForm{
			Title:   "  Cannot read chapter 12  ",
			Content: "The chapter page shows a blank screen.",
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(7), req.ID)
		assert.Equal(t, uint64(3), req.UserID)
		assert.Equal(t, "Cannot read chapter 12", req.Title)
		assert.Equal(t, models.RequestStatusPending, req.Status)
		assert.Nil(t, req.ProcessedAt)
		assert.Nil(t, req.ProcessedBy)
		assert.Equal(t, now, req.CreatedAt)
	})

	t.Run("short title is rejected without touching storage", func(t *testing.T) {
		svc := newTestRequestService(&mockRequestRepository{}, time.UTC, now)

		_, err := svc.CreateRequest(ctx, 3, models.CreateRequestForm{
			Title:   "ab",
			Content: "The chapter page shows a blank screen.",
		})
		verr, ok := errs.IsValidation(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "title")
		assert.NotContains(t, verr.Fields, "content")
	})

	t.Run("blank content is rejected", func(t *testing.T) {
		svc := newTestRequestService(&mockRequestRepository{}, time.UTC, now)

		_, err := svc.CreateRequest(ctx, 3, models.CreateRequestForm{Title: "Valid title", Content: "          "})
		verr, ok := errs.IsValidation(err)
		require.True(t, ok)
		assert.Contains(t, verr.Fields, "content")
	})

	t.Run("storage failure surfaces as storage error", func(t *testing.T) {
		repo := &mockRequestRepository{
			createFunc: func(ctx context.Context, req *models.Request) (*models.Request, error) {
				return nil, errors.New("connection refused")
			},
		}
		svc := newTestRequestService(repo, time.UTC, now)

		_, err := svc.CreateRequest(ctx, 3, models.CreateRequestForm{
			Title:   "Cannot read chapter 12",
			Content: "The chapter page shows a blank screen.",
		})
		assert.ErrorIs(t, err, errs.ErrStorage)
	})
}

func TestRequestService_GetUserRequests(t *testing.T) {
	ctx := context.Background()

	var gotFilter models.RequestFilter
	var gotLimit, gotOffset int
	repo := &mockRequestRepository{
		countFunc: func(ctx context.Context, filter models.RequestFilter) (int64, error) {
			return 25, nil
		},
		listFunc: func(ctx context.Context, filter models.RequestFilter, limit, offset int) ([]*models.RequestWithUser, error) {
			gotFilter, gotLimit, gotOffset = filter, limit, offset
			return []*models.RequestWithUser{{Request: models.Request{ID: 1}}}, nil
		},
	}
	svc := newTestRequestService(repo, time.UTC, time.Now())

	requests, page, err := svc.GetUserRequests(ctx, 3, models.ListRequestsQuery{Page: 99, Status: "pending", Search: " blank "})
	require.NoError(t, err)
	assert.Len(t, requests, 1)

	// out-of-range page falls back to the last page
	assert.Equal(t, 3, page.Number)
	assert.Equal(t, 3, page.NumPages)
	assert.Equal(t, UserRequestsPerPage, gotLimit)
	assert.Equal(t, 20, gotOffset)

	require.NotNil(t, gotFilter.UserID)
	assert.Equal(t, uint64(3), *gotFilter.UserID)
	assert.Equal(t, models.RequestStatusPending, gotFilter.Status)
	assert.Equal(t, "blank", gotFilter.Search)
	assert.False(t, gotFilter.SearchUsers)
}

func TestRequestService_GetUserRequests_Empty(t *testing.T) {
	repo := &mockRequestRepository{
		countFunc: func(ctx context.Context, filter models.RequestFilter) (int64, error) {
			return 0, nil
		},
	}
	svc := newTestRequestService(repo, time.UTC, time.Now())

	requests, page, err := svc.GetUserRequests(context.Background(), 3, models.ListRequestsQuery{Status: "bogus"})
	require.NoError(t, err)
	assert.Empty(t, requests)
	assert.Equal(t, 1, page.Number)
}

func TestRequestService_GetAllRequestsForAdmin(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	var gotFilter models.RequestFilter
	var gotLimit int
	repo := &mockRequestRepository{
		countFunc: func(ctx context.Context, filter models.RequestFilter) (int64, error) {
			return 1, nil
		},
		listFunc: func(ctx context.Context, filter models.RequestFilter, limit, offset int) ([]*models.RequestWithUser, error) {
			gotFilter, gotLimit = filter, limit
			return []*models.RequestWithUser{{Request: models.Request{ID: 1}}}, nil
		},
	}
	svc := newTestRequestService(repo, loc, time.Now())

	_, _, err = svc.GetAllRequestsForAdmin(context.Background(), models.AdminListRequestsQuery{
		ListRequestsQuery: models.ListRequestsQuery{Search: "alice", Sort: "created_at"},
		DateFrom:          "2024-05-01",
		DateTo:            "2024-05-31",
		User:              "bob",
	})
	require.NoError(t, err)

	assert.Equal(t, AdminRequestsPerPage, gotLimit)
	assert.Nil(t, gotFilter.UserID)
	assert.True(t, gotFilter.SearchUsers)
	assert.Equal(t, "bob", gotFilter.User)
	require.NotNil(t, gotFilter.CreatedFrom)
	require.NotNil(t, gotFilter.CreatedBefore)
	assert.True(t, gotFilter.CreatedFrom.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, loc)))
	assert.True(t, gotFilter.CreatedBefore.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, loc)))
	assert.Equal(t, models.RequestOrderBy("created_at"), gotFilter.OrderBy)
}

func TestRequestService_GetAllRequestsForAdmin_InvalidDatesIgnored(t *testing.T) {
	var gotFilter models.RequestFilter
	repo := &mockRequestRepository{
		countFunc: func(ctx context.Context, filter models.RequestFilter) (int64, error) {
			gotFilter = filter
			return 0, nil
		},
	}
	svc := newTestRequestService(repo, time.UTC, time.Now())

	_, _, err := svc.GetAllRequestsForAdmin(context.Background(), models.AdminListRequestsQuery{
		DateFrom: "yesterday",
		DateTo:   "2024-13-45",
	})
	require.NoError(t, err)
	assert.Nil(t, gotFilter.CreatedFrom)
	assert.Nil(t, gotFilter.CreatedBefore)
}

func TestRequestService_GetRequestDetail(t *testing.T) {
	repo := &mockRequestRepository{
		getByIDFunc: func(ctx context.Context, requestID uint64) (*models.RequestWithUser, error) {
			if requestID == 1 {
				return &models.RequestWithUser{Request: models.Request{ID: 1, UserID: 3}}, nil
			}
			return nil, nil
		},
	}
	svc := newTestRequestService(repo, time.UTC, time.Now())
	ctx := context.Background()

	tests := []struct {
		name      string
		requestID uint64
		viewer    *auth.UserContext
		wantErr   error
	}{
		{name: "owner", requestID: 1, viewer: &auth.UserContext{UserID: 3}},
		{name: "staff", requestID: 1, viewer: &auth.UserContext{UserID: 9, IsStaff: true}},
		{name: "other user", requestID: 1, viewer: &auth.UserContext{UserID: 4}, wantErr: errs.ErrForbidden},
		{name: "anonymous", requestID: 1, wantErr: errs.ErrForbidden},
		{name: "missing", requestID: 2, viewer: &auth.UserContext{UserID: 3}, wantErr: errs.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := svc.GetRequestDetail(ctx, tt.requestID, tt.viewer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, req)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(1), req.ID)
		})
	}
}

func TestRequestService_ProcessRequest(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	t.Run("pending request is processed", func(t *testing.T) {
		processed := false
		repo := &mockRequestRepository{
			getByIDFunc: func(ctx context.Context, requestID uint64) (*models.RequestWithUser, error) {
				req := &models.RequestWithUser{Request: models.Request{ID: requestID, Status: models.RequestStatusPending}}
				if processed {
					admin := uint64(9)
					req.Status = models.RequestStatusProcessed
					req.ProcessedBy = &admin
					req.ProcessedAt = &now
					req.AdminNote = "fixed"
				}
				return req, nil
			},
			markProcessedFunc: func(ctx context.Context, requestID, adminID uint64, note string, at time.Time) (bool, error) {
				assert.Equal(t, uint64(9), adminID)
				assert.Equal(t, "fixed", note)
				assert.Equal(t, now, at)
				processed = true
				return true, nil
			},
		}
		svc := newTestRequestService(repo, time.UTC, now)

		req, err := svc.ProcessRequest(ctx, 1, 9, "  fixed ")
		require.NoError(t, err)
		assert.True(t, req.IsProcessed())
		require.NotNil(t, req.ProcessedBy)
		require.NotNil(t, req.ProcessedAt)
		assert.Equal(t, uint64(9), *req.ProcessedBy)
	})

	t.Run("already processed", func(t *testing.T) {
		repo := &mockRequestRepository{
			getByIDFunc: func(ctx context.Context, requestID uint64) (*models.RequestWithUser, error) {
				return &models.RequestWithUser{Request: models.Request{ID: requestID, Status: models.RequestStatusProcessed}}, nil
			},
		}
		svc := newTestRequestService(repo, time.UTC, now)

		_, err := svc.ProcessRequest(ctx, 1, 9, "")
		assert.ErrorIs(t, err, errs.ErrAlreadyProcessed)
	})

	t.Run("concurrent processor wins", func(t *testing.T) {
		repo := &mockRequestRepository{
			getByIDFunc: func(ctx context.Context, requestID uint64) (*models.RequestWithUser, error) {
				return &models.RequestWithUser{Request: models.Request{ID: requestID, Status: models.RequestStatusPending}}, nil
			},
			markProcessedFunc: func(ctx context.Context, requestID, adminID uint64, note string, at time.Time) (bool, error) {
				return false, nil
			},
		}
		svc := newTestRequestService(repo, time.UTC, now)

		_, err := svc.ProcessRequest(ctx, 1, 9, "")
		assert.ErrorIs(t, err, errs.ErrAlreadyProcessed)
	})

	t.Run("missing request", func(t *testing.T) {
		repo := &mockRequestRepository{
			getByIDFunc: func(ctx context.Context, requestID uint64) (*models.RequestWithUser, error) {
				return nil, nil
			},
		}
		svc := newTestRequestService(repo, time.UTC, now)

		_, err := svc.ProcessRequest(ctx, 1, 9, "")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestRequestService_GetRequestStatistics(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	// 20:00 UTC is already the next day in UTC+7
	now := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)

	repo := &mockRequestRepository{
		statisticsFunc: func(ctx context.Context, dayStart, dayEnd time.Time) (*models.RequestStatistics, error) {
			assert.True(t, dayStart.Equal(time.Date(2024, 5, 11, 0, 0, 0, 0, loc)))
			assert.Equal(t, 24*time.Hour, dayEnd.Sub(dayStart))
			return &models.RequestStatistics{Total: 5, Pending: 2, Processed: 3, CreatedToday: 1}, nil
		},
	}
	svc := newTestRequestService(repo, loc, now)

	stats, err := svc.GetRequestStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, stats.Total, stats.Pending+stats.Processed)
}
