package service

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/mock"

	"novelhub/moderation-service/internal/models"
)

var errNotImplemented = errors.New("not implemented")

// Mock repositories

type mockRequestRepository struct {
	createFunc        func(ctx context.Context, req *models.Request) (*models.Request, error)
	getByIDFunc       func(ctx context.Context, requestID uint64) (*models.RequestWithUser, error)
	countFunc         func(ctx context.Context, filter models.RequestFilter) (int64, error)
	listFunc          func(ctx context.Context, filter models.RequestFilter, limit, offset int) ([]*models.RequestWithUser, error)
	markProcessedFunc func(ctx context.Context, requestID, adminID uint64, note string, at time.Time) (bool, error)
	statisticsFunc    func(ctx context.Context, dayStart, dayEnd time.Time) (*models.RequestStatistics, error)
}

func (m *mockRequestRepository) Create(ctx context.Context, req *models.Request) (*models.Request, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockRequestRepository) GetByID(ctx context.Context, requestID uint64) (*models.RequestWithUser, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, requestID)
	}
	return nil, errNotImplemented
}

func (m *mockRequestRepository) Count(ctx context.Context, filter models.RequestFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, errNotImplemented
}

func (m *mockRequestRepository) List(ctx context.Context, filter models.RequestFilter, limit, offset int) ([]*models.RequestWithUser, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter, limit, offset)
	}
	return nil, errNotImplemented
}

func (m *mockRequestRepository) MarkProcessed(ctx context.Context, requestID, adminID uint64, note string, at time.Time) (bool, error) {
	if m.markProcessedFunc != nil {
		return m.markProcessedFunc(ctx, requestID, adminID, note, at)
	}
	return false, errNotImplemented
}

func (m *mockRequestRepository) Statistics(ctx context.Context, dayStart, dayEnd time.Time) (*models.RequestStatistics, error) {
	if m.statisticsFunc != nil {
		return m.statisticsFunc(ctx, dayStart, dayEnd)
	}
	return nil, errNotImplemented
}

type mockPersonRequestRepository struct {
	createFunc     func(ctx context.Context, req *models.PersonRequest) (*models.PersonRequest, error)
	getByIDFunc    func(ctx context.Context, kind models.PersonKind, requestID uint64) (*models.PersonRequest, error)
	countFunc      func(ctx context.Context, kind models.PersonKind, filter models.PersonRequestFilter) (int64, error)
	listFunc       func(ctx context.Context, kind models.PersonKind, filter models.PersonRequestFilter, limit, offset int) ([]*models.PersonRequest, error)
	nameExistsFunc func(ctx context.Context, kind models.PersonKind, name string) (bool, error)
	approveFunc    func(ctx context.Context, kind models.PersonKind, requestID, approverID uint64, at time.Time) (*models.ApprovalResult, error)
	rejectFunc     func(ctx context.Context, kind models.PersonKind, requestID uint64, reason string, at time.Time) (*models.PersonRequest, error)
}

func (m *mockPersonRequestRepository) Create(ctx context.Context, req *models.PersonRequest) (*models.PersonRequest, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockPersonRequestRepository) GetByID(ctx context.Context, kind models.PersonKind, requestID uint64) (*models.PersonRequest, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, kind, requestID)
	}
	return nil, errNotImplemented
}

func (m *mockPersonRequestRepository) Count(ctx context.Context, kind models.PersonKind, filter models.PersonRequestFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, kind, filter)
	}
	return 0, errNotImplemented
}

func (m *mockPersonRequestRepository) List(ctx context.Context, kind models.PersonKind, filter models.PersonRequestFilter, limit, offset int) ([]*models.PersonRequest, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, kind, filter, limit, offset)
	}
	return nil, errNotImplemented
}

func (m *mockPersonRequestRepository) EntityNameExists(ctx context.Context, kind models.PersonKind, name string) (bool, error) {
	if m.nameExistsFunc != nil {
		return m.nameExistsFunc(ctx, kind, name)
	}
	return false, nil
}

func (m *mockPersonRequestRepository) Approve(ctx context.Context, kind models.PersonKind, requestID, approverID uint64, at time.Time) (*models.ApprovalResult, error) {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, kind, requestID, approverID, at)
	}
	return nil, errNotImplemented
}

func (m *mockPersonRequestRepository) Reject(ctx context.Context, kind models.PersonKind, requestID uint64, reason string, at time.Time) (*models.PersonRequest, error) {
	if m.rejectFunc != nil {
		return m.rejectFunc(ctx, kind, requestID, reason, at)
	}
	return nil, errNotImplemented
}

type mockNovelRepository struct {
	getBySlugFunc        func(ctx context.Context, slug string) (*models.Novel, error)
	listUsingRequestFunc func(ctx context.Context, kind models.PersonKind, requestID uint64) ([]*models.Novel, error)
	listByPersonFunc     func(ctx context.Context, kind models.PersonKind, personID uint64) ([]*models.Novel, error)
}

func (m *mockNovelRepository) GetBySlug(ctx context.Context, slug string) (*models.Novel, error) {
	if m.getBySlugFunc != nil {
		return m.getBySlugFunc(ctx, slug)
	}
	return nil, errNotImplemented
}

func (m *mockNovelRepository) ListUsingRequest(ctx context.Context, kind models.PersonKind, requestID uint64) ([]*models.Novel, error) {
	if m.listUsingRequestFunc != nil {
		return m.listUsingRequestFunc(ctx, kind, requestID)
	}
	return nil, errNotImplemented
}

func (m *mockNovelRepository) ListByPerson(ctx context.Context, kind models.PersonKind, personID uint64) ([]*models.Novel, error) {
	if m.listByPersonFunc != nil {
		return m.listByPersonFunc(ctx, kind, personID)
	}
	return nil, errNotImplemented
}

type mockCommentRepository struct {
	createFunc        func(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	getByIDFunc       func(ctx context.Context, commentID uint64) (*models.Comment, error)
	countTopLevelFunc func(ctx context.Context, novelID uint64) (int64, error)
	listTopLevelFunc  func(ctx context.Context, novelID uint64, limit, offset int) ([]*models.Comment, error)
	listRepliesFunc   func(ctx context.Context, parentIDs []uint64) ([]*models.Comment, error)
	deactivateFunc    func(ctx context.Context, commentID, userID uint64) (bool, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, comment)
	}
	return nil, errNotImplemented
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID uint64) (*models.Comment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, commentID)
	}
	return nil, errNotImplemented
}

func (m *mockCommentRepository) CountTopLevel(ctx context.Context, novelID uint64) (int64, error) {
	if m.countTopLevelFunc != nil {
		return m.countTopLevelFunc(ctx, novelID)
	}
	return 0, errNotImplemented
}

func (m *mockCommentRepository) ListTopLevel(ctx context.Context, novelID uint64, limit, offset int) ([]*models.Comment, error) {
	if m.listTopLevelFunc != nil {
		return m.listTopLevelFunc(ctx, novelID, limit, offset)
	}
	return nil, errNotImplemented
}

func (m *mockCommentRepository) ListReplies(ctx context.Context, parentIDs []uint64) ([]*models.Comment, error) {
	if m.listRepliesFunc != nil {
		return m.listRepliesFunc(ctx, parentIDs)
	}
	return nil, errNotImplemented
}

func (m *mockCommentRepository) Deactivate(ctx context.Context, commentID, userID uint64) (bool, error) {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, commentID, userID)
	}
	return false, errNotImplemented
}

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	args := m.Called(ctx, notification)
	if n, ok := args.Get(0).(*models.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockDispatcher is a mock implementation of Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, userID uint64, notification *models.Notification, redirectURL string) error {
	args := m.Called(ctx, userID, notification, redirectURL)
	return args.Error(0)
}
