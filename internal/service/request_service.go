package service

import (
	"context"
	"strings"
	"time"

	"novelhub/moderation-service/internal/errs"
	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/internal/repository"
	"novelhub/moderation-service/pkg/auth"
	"novelhub/moderation-service/pkg/helpers"
	"novelhub/moderation-service/pkg/metrics"
)

const (
	UserRequestsPerPage  = 10
	AdminRequestsPerPage = 20
)

type RequestService interface {
	CreateRequest(ctx context.Context, userID uint64, form models.CreateRequestForm) (*models.Request, error)
	GetUserRequests(ctx context.Context, userID uint64, query models.ListRequestsQuery) ([]*models.RequestWithUser, helpers.Page, error)
	GetAllRequestsForAdmin(ctx context.Context, query models.AdminListRequestsQuery) ([]*models.RequestWithUser, helpers.Page, error)
	GetRequestDetail(ctx context.Context, requestID uint64, viewer *auth.UserContext) (*models.RequestWithUser, error)
	ProcessRequest(ctx context.Context, requestID, adminID uint64, note string) (*models.RequestWithUser, error)
	GetRequestStatistics(ctx context.Context) (*models.RequestStatistics, error)
}

type requestService struct {
	requestRepo repository.RequestRepository
	validator   *helpers.CustomValidator
	metrics     *metrics.Metrics
	loc         *time.Location
	now         func() time.Time
}

func NewRequestService(requestRepo repository.RequestRepository, validator *helpers.CustomValidator, m *metrics.Metrics, loc *time.Location) RequestService {
	if loc == nil {
		loc = time.UTC
	}
	return &requestService{
		requestRepo: requestRepo,
		validator:   validator,
		metrics:     m,
		loc:         loc,
		now:         time.Now,
	}
}

func (s *requestService) CreateRequest(ctx context.Context, userID uint64, form models.CreateRequestForm) (*models.Request, error) {
	form.Normalize()
	if err := validateForm(ctx, s.validator, form); err != nil {
		return nil, err
	}

	now := s.now()
	req := &models.Request{
		UserID:    userID,
		Title:     form.Title,
		Content:   form.Content,
		Status:    models.RequestStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.requestRepo.Create(ctx, req)
	if err != nil {
		return nil, errs.Storage("create request", err)
	}
	return created, nil
}

func (s *requestService) GetUserRequests(ctx context.Context, userID uint64, query models.ListRequestsQuery) ([]*models.RequestWithUser, helpers.Page, error) {
	filter := s.baseFilter(query)
	filter.UserID = &userID

	return s.list(ctx, filter, query.Page, UserRequestsPerPage)
}

func (s *requestService) GetAllRequestsForAdmin(ctx context.Context, query models.AdminListRequestsQuery) ([]*models.RequestWithUser, helpers.Page, error) {
	filter := s.baseFilter(query.ListRequestsQuery)
	filter.SearchUsers = true
	filter.User = strings.TrimSpace(query.User)

	if from, ok := s.parseDay(query.DateFrom); ok {
		filter.CreatedFrom = &from
	}
	if to, ok := s.parseDay(query.DateTo); ok {
		// inclusive: everything before the start of the next local day
		before := to.AddDate(0, 0, 1)
		filter.CreatedBefore = &before
	}

	return s.list(ctx, filter, query.Page, AdminRequestsPerPage)
}

func (s *requestService) GetRequestDetail(ctx context.Context, requestID uint64, viewer *auth.UserContext) (*models.RequestWithUser, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, errs.Storage("get request", err)
	}
	if req == nil {
		return nil, errs.ErrNotFound
	}
	if viewer == nil || (!viewer.IsStaff && req.UserID != viewer.UserID) {
		return nil, errs.ErrForbidden
	}
	return req, nil
}

func (s *requestService) ProcessRequest(ctx context.Context, requestID, adminID uint64, note string) (*models.RequestWithUser, error) {
	note = strings.TrimSpace(note)
	if err := validateForm(ctx, s.validator, models.ProcessRequestForm{AdminNote: note}); err != nil {
		return nil, err
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, errs.Storage("get request", err)
	}
	if req == nil {
		return nil, errs.ErrNotFound
	}
	if req.IsProcessed() {
		return nil, errs.ErrAlreadyProcessed
	}

	ok, err := s.requestRepo.MarkProcessed(ctx, requestID, adminID, note, s.now())
	if err != nil {
		return nil, errs.Storage("process request", err)
	}
	if !ok {
		// lost the race against another processor
		return nil, errs.ErrAlreadyProcessed
	}
	s.metrics.ObserveRequestProcessed()

	processed, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, errs.Storage("get request", err)
	}
	if processed == nil {
		return nil, errs.ErrNotFound
	}
	return processed, nil
}

func (s *requestService) GetRequestStatistics(ctx context.Context) (*models.RequestStatistics, error) {
	now := s.now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	stats, err := s.requestRepo.Statistics(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, errs.Storage("request statistics", err)
	}
	return stats, nil
}

func (s *requestService) baseFilter(query models.ListRequestsQuery) models.RequestFilter {
	filter := models.RequestFilter{
		Search:  strings.TrimSpace(query.Search),
		OrderBy: models.RequestOrderBy(query.Sort),
	}
	if status, ok := models.ParseRequestStatus(query.Status); ok {
		filter.Status = status
	}
	return filter
}

func (s *requestService) list(ctx context.Context, filter models.RequestFilter, page, perPage int) ([]*models.RequestWithUser, helpers.Page, error) {
	total, err := s.requestRepo.Count(ctx, filter)
	if err != nil {
		return nil, helpers.Page{}, errs.Storage("count requests", err)
	}

	p := helpers.NewPage(page, perPage, total)
	if total == 0 {
		return []*models.RequestWithUser{}, p, nil
	}

	requests, err := s.requestRepo.List(ctx, filter, p.PerPage, p.Offset())
	if err != nil {
		return nil, helpers.Page{}, errs.Storage("list requests", err)
	}
	return requests, p, nil
}

// parseDay reads YYYY-MM-DD as the start of that day in the service timezone
func (s *requestService) parseDay(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(models.DateLayout, raw, s.loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
