package service

import (
	"context"
	"strings"
	"time"

	"novelhub/moderation-service/internal/errs"
	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/internal/repository"
	"novelhub/moderation-service/pkg/helpers"
)

const (
	UserPersonRequestsPerPage  = 10
	AdminPersonRequestsPerPage = 20
)

// PersonRequestService handles submission and browsing of author/artist proposals
type PersonRequestService interface {
	CreatePersonRequest(ctx context.Context, kind models.PersonKind, userID uint64, form models.PersonRequestForm) (*models.PersonRequest, error)
	ListUserPersonRequests(ctx context.Context, kind models.PersonKind, userID uint64, query models.PersonRequestQuery) ([]*models.PersonRequest, helpers.Page, error)
	GetUserPersonRequest(ctx context.Context, kind models.PersonKind, requestID, userID uint64) (*models.PersonRequest, error)
	ListPersonRequestsForAdmin(ctx context.Context, kind models.PersonKind, query models.PersonRequestQuery) ([]*models.PersonRequest, helpers.Page, error)
	GetPersonRequestForAdmin(ctx context.Context, kind models.PersonKind, requestID uint64) (*models.PersonRequestDetail, error)
}

type personRequestService struct {
	personRepo repository.PersonRequestRepository
	novelRepo  repository.NovelRepository
	validator  *helpers.CustomValidator
	now        func() time.Time
}

func NewPersonRequestService(personRepo repository.PersonRequestRepository, novelRepo repository.NovelRepository, validator *helpers.CustomValidator) PersonRequestService {
	return &personRequestService{
		personRepo: personRepo,
		novelRepo:  novelRepo,
		validator:  validator,
		now:        time.Now,
	}
}

func (s *personRequestService) CreatePersonRequest(ctx context.Context, kind models.PersonKind, userID uint64, form models.PersonRequestForm) (*models.PersonRequest, error) {
	form.Normalize()

	var fields map[string]string
	var cause error
	if err := validateForm(ctx, s.validator, form); err != nil {
		verr, ok := errs.IsValidation(err)
		if !ok {
			return nil, err
		}
		fields, cause = verr.Fields, verr.Cause
	}

	// the name check only makes sense for a name that passed its own rules
	if _, bad := fields["name"]; !bad {
		exists, err := s.personRepo.EntityNameExists(ctx, kind, form.Name)
		if err != nil {
			return nil, errs.Storage("check "+string(kind)+" name", err)
		}
		if exists {
			fields = helpers.MergeValidationErrors(fields, helpers.CreateValidationError("name", nameTakenMessage(ctx, form.Name)))
		}
	}
	if len(fields) > 0 {
		return nil, &errs.ValidationError{Fields: fields, Cause: cause}
	}

	now := s.now()
	req := &models.PersonRequest{
		Kind:           kind,
		PersonProfile:  form.Profile(),
		CreatedBy:      userID,
		ApprovalStatus: models.ApprovalStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.personRepo.Create(ctx, req)
	if err != nil {
		return nil, errs.Storage("create "+string(kind)+" request", err)
	}
	return created, nil
}

func (s *personRequestService) ListUserPersonRequests(ctx context.Context, kind models.PersonKind, userID uint64, query models.PersonRequestQuery) ([]*models.PersonRequest, helpers.Page, error) {
	filter := personFilter(query)
	filter.CreatedBy = &userID
	filter.Creator = ""

	return s.list(ctx, kind, filter, query.Page, UserPersonRequestsPerPage)
}

func (s *personRequestService) GetUserPersonRequest(ctx context.Context, kind models.PersonKind, requestID, userID uint64) (*models.PersonRequest, error) {
	req, err := s.personRepo.GetByID(ctx, kind, requestID)
	if err != nil {
		return nil, errs.Storage("get "+string(kind)+" request", err)
	}
	if req == nil || req.CreatedBy != userID {
		return nil, errs.ErrNotFound
	}
	return req, nil
}

func (s *personRequestService) ListPersonRequestsForAdmin(ctx context.Context, kind models.PersonKind, query models.PersonRequestQuery) ([]*models.PersonRequest, helpers.Page, error) {
	return s.list(ctx, kind, personFilter(query), query.Page, AdminPersonRequestsPerPage)
}

func (s *personRequestService) GetPersonRequestForAdmin(ctx context.Context, kind models.PersonKind, requestID uint64) (*models.PersonRequestDetail, error) {
	req, err := s.personRepo.GetByID(ctx, kind, requestID)
	if err != nil {
		return nil, errs.Storage("get "+string(kind)+" request", err)
	}
	if req == nil {
		return nil, errs.ErrNotFound
	}

	novels, err := s.novelRepo.ListUsingRequest(ctx, kind, req.ID)
	if err != nil {
		return nil, errs.Storage("list novels", err)
	}
	if novels == nil {
		novels = []*models.Novel{}
	}
	detail := &models.PersonRequestDetail{Request: req, Novels: novels}

	if req.CreatedEntityID != nil {
		linked, err := s.novelRepo.ListByPerson(ctx, kind, *req.CreatedEntityID)
		if err != nil {
			return nil, errs.Storage("list "+string(kind)+" novels", err)
		}
		if linked == nil {
			linked = []*models.Novel{}
		}
		detail.EntityNovels = linked
	}
	return detail, nil
}

func (s *personRequestService) list(ctx context.Context, kind models.PersonKind, filter models.PersonRequestFilter, page, perPage int) ([]*models.PersonRequest, helpers.Page, error) {
	total, err := s.personRepo.Count(ctx, kind, filter)
	if err != nil {
		return nil, helpers.Page{}, errs.Storage("count "+string(kind)+" requests", err)
	}

	p := helpers.NewPage(page, perPage, total)
	if total == 0 {
		return []*models.PersonRequest{}, p, nil
	}

	requests, err := s.personRepo.List(ctx, kind, filter, p.PerPage, p.Offset())
	if err != nil {
		return nil, helpers.Page{}, errs.Storage("list "+string(kind)+" requests", err)
	}
	return requests, p, nil
}

func personFilter(query models.PersonRequestQuery) models.PersonRequestFilter {
	filter := models.PersonRequestFilter{
		Search:  strings.TrimSpace(query.Search),
		Creator: strings.TrimSpace(query.Creator),
	}
	if status, ok := models.ParseApprovalStatus(query.Status); ok {
		filter.Status = status
	}
	if gender, ok := models.ParseGender(query.Gender); ok {
		filter.Gender = gender
	}
	return filter
}
