package handler

import (
	"context"
	"errors"

	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/pkg/auth"
	"novelhub/moderation-service/pkg/helpers"
)

var errNotImplemented = errors.New("not implemented")

// Mock services

type mockRequestService struct {
	createFunc     func(ctx context.Context, userID uint64, form models.CreateRequestForm) (*models.Request, error)
	listFunc       func(ctx context.Context, userID uint64, query models.ListRequestsQuery) ([]*models.RequestWithUser, helpers.Page, error)
	adminListFunc  func(ctx context.Context, query models.AdminListRequestsQuery) ([]*models.RequestWithUser, helpers.Page, error)
	detailFunc     func(ctx context.Context, requestID uint64, viewer *auth.UserContext) (*models.RequestWithUser, error)
	processFunc    func(ctx context.Context, requestID, adminID uint64, note string) (*models.RequestWithUser, error)
	statisticsFunc func(ctx context.Context) (*models.RequestStatistics, error)
}

func (m *mockRequestService) CreateRequest(ctx context.Context, userID uint64, form models.CreateRequestForm) (*models.Request, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, form)
	}
	return nil, errNotImplemented
}

func (m *mockRequestService) GetUserRequests(ctx context.Context, userID uint64, query models.ListRequestsQuery) ([]*models.RequestWithUser, helpers.Page, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, query)
	}
	return nil, helpers.Page{}, errNotImplemented
}

func (m *mockRequestService) GetAllRequestsForAdmin(ctx context.Context, query models.AdminListRequestsQuery) ([]*models.RequestWithUser, helpers.Page, error) {
	if m.adminListFunc != nil {
		return m.adminListFunc(ctx, query)
	}
	return nil, helpers.Page{}, errNotImplemented
}

func (m *mockRequestService) GetRequestDetail(ctx context.Context, requestID uint64, viewer *auth.UserContext) (*models.RequestWithUser, error) {
	if m.detailFunc != nil {
		return m.detailFunc(ctx, requestID, viewer)
	}
	return nil, errNotImplemented
}

func (m *mockRequestService) ProcessRequest(ctx context.Context, requestID, adminID uint64, note string) (*models.RequestWithUser, error) {
	if m.processFunc != nil {
		return m.processFunc(ctx, requestID, adminID, note)
	}
	return nil, errNotImplemented
}

func (m *mockRequestService) GetRequestStatistics(ctx context.Context) (*models.RequestStatistics, error) {
	if m.statisticsFunc != nil {
		return m.statisticsFunc(ctx)
	}
	return nil, errNotImplemented
}

type mockPersonRequestService struct {
	createFunc    func(ctx context.Context, kind models.PersonKind, userID uint64, form models.PersonRequestForm) (*models.PersonRequest, error)
	listFunc      func(ctx context.Context, kind models.PersonKind, userID uint64, query models.PersonRequestQuery) ([]*models.PersonRequest, helpers.Page, error)
	getFunc       func(ctx context.Context, kind models.PersonKind, requestID, userID uint64) (*models.PersonRequest, error)
	adminListFunc func(ctx context.Context, kind models.PersonKind, query models.PersonRequestQuery) ([]*models.PersonRequest, helpers.Page, error)
	adminGetFunc  func(ctx context.Context, kind models.PersonKind, requestID uint64) (*models.PersonRequestDetail, error)
}

func (m *mockPersonRequestService) CreatePersonRequest(ctx context.Context, kind models.PersonKind, userID uint64, form models.PersonRequestForm) (*models.PersonRequest, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, kind, userID, form)
	}
	return nil, errNotImplemented
}

func (m *mockPersonRequestService) ListUserPersonRequests(ctx context.Context, kind models.PersonKind, userID uint64, query models.PersonRequestQuery) ([]*models.PersonRequest, helpers.Page, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, kind, userID, query)
	}
	return nil, helpers.Page{}, errNotImplemented
}

func (m *mockPersonRequestService) GetUserPersonRequest(ctx context.Context, kind models.PersonKind, requestID, userID uint64) (*models.PersonRequest, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, kind, requestID, userID)
	}
	return nil, errNotImplemented
}

func (m *mockPersonRequestService) ListPersonRequestsForAdmin(ctx context.Context, kind models.PersonKind, query models.PersonRequestQuery) ([]*models.PersonRequest, helpers.Page, error) {
	if m.adminListFunc != nil {
		return m.adminListFunc(ctx, kind, query)
	}
	return nil, helpers.Page{}, errNotImplemented
}

func (m *mockPersonRequestService) GetPersonRequestForAdmin(ctx context.Context, kind models.PersonKind, requestID uint64) (*models.PersonRequestDetail, error) {
	if m.adminGetFunc != nil {
		return m.adminGetFunc(ctx, kind, requestID)
	}
	return nil, errNotImplemented
}

type mockApprovalService struct {
	approveFunc func(ctx context.Context, kind models.PersonKind, requestID, approverID uint64) (*models.ApprovalResult, error)
	rejectFunc  func(ctx context.Context, kind models.PersonKind, requestID uint64, reason string) (*models.PersonRequest, error)
}

func (m *mockApprovalService) Approve(ctx context.Context, kind models.PersonKind, requestID, approverID uint64) (*models.ApprovalResult, error) {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, kind, requestID, approverID)
	}
	return nil, errNotImplemented
}

func (m *mockApprovalService) Reject(ctx context.Context, kind models.PersonKind, requestID uint64, reason string) (*models.PersonRequest, error) {
	if m.rejectFunc != nil {
		return m.rejectFunc(ctx, kind, requestID, reason)
	}
	return nil, errNotImplemented
}

type mockCommentService struct {
	createFunc func(ctx context.Context, userID uint64, novelSlug string, form models.CommentForm) (*models.Comment, error)
	listFunc   func(ctx context.Context, novelSlug string, page int) ([]*models.CommentWithReplies, helpers.Page, error)
	deleteFunc func(ctx context.Context, commentID, userID uint64) error
}

func (m *mockCommentService) CreateComment(ctx context.Context, userID uint64, novelSlug string, form models.CommentForm) (*models.Comment, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, novelSlug, form)
	}
	return nil, errNotImplemented
}

func (m *mockCommentService) ListNovelComments(ctx context.Context, novelSlug string, page int) ([]*models.CommentWithReplies, helpers.Page, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, novelSlug, page)
	}
	return nil, helpers.Page{}, errNotImplemented
}

func (m *mockCommentService) DeleteComment(ctx context.Context, commentID, userID uint64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, commentID, userID)
	}
	return errNotImplemented
}
