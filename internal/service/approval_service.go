package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"novelhub/moderation-service/internal/errs"
	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/internal/repository"
	"novelhub/moderation-service/pkg/metrics"
)

// Approval outcomes reported to metrics
const (
	outcomeCreated         = "created"
	outcomeReused          = "reused"
	outcomeRejected        = "rejected"
	outcomeAlreadyApproved = "already_approved"
	outcomeInvalid         = "invalid"
	outcomeFailed          = "failed"
)

// ApprovalService moves author and artist proposals out of pending
type ApprovalService interface {
	Approve(ctx context.Context, kind models.PersonKind, requestID, approverID uint64) (*models.ApprovalResult, error)
	Reject(ctx context.Context, kind models.PersonKind, requestID uint64, reason string) (*models.PersonRequest, error)
}

type approvalService struct {
	personRepo repository.PersonRequestRepository
	metrics    *metrics.Metrics
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewApprovalService(personRepo repository.PersonRequestRepository, m *metrics.Metrics, log logrus.FieldLogger) ApprovalService {
	return &approvalService{
		personRepo: personRepo,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

func (s *approvalService) Approve(ctx context.Context, kind models.PersonKind, requestID, approverID uint64) (*models.ApprovalResult, error) {
	result, err := s.personRepo.Approve(ctx, kind, requestID, approverID, s.now())
	if err != nil {
		s.observeFailure(kind, err)
		return nil, errs.Storage("approve "+string(kind)+" request", err)
	}

	outcome := outcomeCreated
	if result.Reused {
		outcome = outcomeReused
	}
	s.metrics.ObserveApproval(string(kind), outcome)

	s.log.WithFields(logrus.Fields{
		"kind":           kind,
		"request_id":     requestID,
		"entity_id":      result.Entity.ID,
		"reused":         result.Reused,
		"novels_updated": result.NovelsUpdated,
		"approved_by":    approverID,
	}).Info("Person request approved")

	return result, nil
}

func (s *approvalService) Reject(ctx context.Context, kind models.PersonKind, requestID uint64, reason string) (*models.PersonRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &errs.ValidationError{
			Fields: map[string]string{"rejected_reason": requiredMessage(ctx, "rejected reason")},
			Cause:  errs.ErrReasonRequired,
		}
	}

	req, err := s.personRepo.Reject(ctx, kind, requestID, reason, s.now())
	if err != nil {
		s.observeFailure(kind, err)
		return nil, errs.Storage("reject "+string(kind)+" request", err)
	}
	s.metrics.ObserveApproval(string(kind), outcomeRejected)

	s.log.WithFields(logrus.Fields{
		"kind":       kind,
		"request_id": requestID,
	}).Info("Person request rejected")

	return req, nil
}

func (s *approvalService) observeFailure(kind models.PersonKind, err error) {
	switch {
	case errors.Is(err, errs.ErrAlreadyApproved):
		s.metrics.ObserveApproval(string(kind), outcomeAlreadyApproved)
	case errors.Is(err, errs.ErrInvalidTransition):
		s.metrics.ObserveApproval(string(kind), outcomeInvalid)
	case errors.Is(err, errs.ErrNotFound):
	default:
		s.metrics.ObserveApproval(string(kind), outcomeFailed)
		s.log.WithError(err).WithField("kind", kind).Error("Person request decision failed")
	}
}
