package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

const maxIdempotencyKeyLen = 128

// WorkflowService applies every status change of a consultation request and
// emits the matching audit row in the same store transaction.
type WorkflowService struct {
	repo     ports.RequestRepository
	idem     ports.IdempotencyStore
	observer ports.WorkflowObserver
	logger   zerolog.Logger
	now      func() time.Time
}

// NewWorkflowService wires the workflow engine. idem may be nil, in which case
// Idempotency-Key headers are ignored.
func NewWorkflowService(
	repo ports.RequestRepository,
	idem ports.IdempotencyStore,
	observer ports.WorkflowObserver,
	logger zerolog.Logger,
) *WorkflowService {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &WorkflowService{
		repo:     repo,
		idem:     idem,
		observer: observer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new pending request for the caller. No audit row is written.
func (s *WorkflowService) Create(ctx context.Context, in ports.CreateRequestInput) (*ports.CreateRequestResult, error) {
	owner := in.Principal.UserID
	if owner <= 0 {
		return nil, domain.ErrForbidden
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return nil, domain.NewValidationError("Idempotency-Key", fmt.Sprintf("must be at most %d characters", maxIdempotencyKeyLen))
	}

	if replay, err := s.replay(ctx, owner, key); err != nil {
		return nil, err
	} else if replay != nil {
		return &ports.CreateRequestResult{Request: replay, Replayed: true}, nil
	}

	req, err := domain.NewConsultationRequest(owner, in.Draft, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, req); err != nil {
		s.logger.Error().Err(err).Int64("user_id", owner).Msg("failed to create request")
		return nil, fmt.Errorf("create request: %w", err)
	}

	if key != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, owner, key, req.ID); err != nil {
			s.logger.Warn().Err(err).Int64("request_id", req.ID).Msg("failed to store idempotency key")
		}
	}

	s.observer.RequestCreated(req.RiskProfile)
	s.logger.Info().
		Int64("request_id", req.ID).
		Int64("user_id", owner).
		Str("risk_profile", string(req.RiskProfile)).
		Msg("request created")

	view, err := s.repo.FindByID(ctx, req.ID, owner)
	if err != nil {
		return nil, fmt.Errorf("create request: reload: %w", err)
	}
	return &ports.CreateRequestResult{Request: view}, nil
}

// replay returns the request previously created under key, if it still exists.
// A store outage is logged and treated as a miss.
func (s *WorkflowService) replay(ctx context.Context, owner int64, key string) (*domain.RequestView, error) {
	if key == "" || s.idem == nil {
		return nil, nil
	}
	id, found, err := s.idem.Lookup(ctx, owner, key)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", owner).Msg("idempotency lookup failed, creating anyway")
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	view, err := s.repo.FindByID(ctx, id, owner)
	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("create request: replay: %w", err)
	}
	s.logger.Info().Str("idempotency_key", key).Int64("request_id", id).Msg("idempotent replay")
	return view, nil
}

// Cancel withdraws the caller's own request. Cancelling an already cancelled
// request succeeds without writing a second audit row.
func (s *WorkflowService) Cancel(ctx context.Context, p domain.Principal, requestID int64) (*ports.CancelResult, error) {
	if p.UserID <= 0 {
		return nil, domain.ErrForbidden
	}
	result := &ports.CancelResult{NewStatus: domain.StatusCancelled}

	_, err := s.repo.ApplyTransition(ctx, requestID, p.UserID, func(req *domain.ConsultationRequest) (*domain.StatusLog, error) {
		result.OldStatus = req.Status
		if req.Status == domain.StatusCancelled {
			return nil, nil
		}
		if !domain.CanTransition(domain.ActorOwner, req.Status, domain.StatusCancelled) {
			return nil, &domain.TransitionError{
				From:   req.Status,
				To:     domain.StatusCancelled,
				Reason: "cannot cancel a request that is already being worked on or finished",
			}
		}
		return s.move(req, p.UserID, domain.StatusCancelled), nil
	})
	if err != nil {
		s.rejected(err, "cancel", requestID)
		return nil, err
	}

	if result.OldStatus != result.NewStatus {
		s.changed(requestID, p.UserID, result.OldStatus, result.NewStatus, domain.ActorOwner)
	}
	return result, nil
}

// SetStatus lets an advisor or admin move a request to any status. Every call
// is audited, including one that keeps the current status.
func (s *WorkflowService) SetStatus(ctx context.Context, p domain.Principal, requestID int64, status string) (*domain.RequestView, error) {
	if !p.Role.IsStaff() {
		s.observer.TransitionRejected("forbidden")
		return nil, domain.ErrForbidden
	}
	next, err := domain.ParseRequestStatus(status)
	if err != nil {
		return nil, err
	}

	var old domain.RequestStatus
	view, err := s.repo.ApplyTransition(ctx, requestID, 0, func(req *domain.ConsultationRequest) (*domain.StatusLog, error) {
		old = req.Status
		if !domain.CanTransition(domain.ActorStaff, req.Status, next) {
			return nil, &domain.TransitionError{From: req.Status, To: next, Reason: "status change not allowed"}
		}
		return s.move(req, p.UserID, next), nil
	})
	if err != nil {
		s.rejected(err, "set_status", requestID)
		return nil, err
	}

	s.changed(requestID, p.UserID, old, next, domain.ActorStaff)
	return view, nil
}

// Delete hard-deletes the caller's own request while nobody has worked on it.
// Deletion is not a transition and is never audited.
func (s *WorkflowService) Delete(ctx context.Context, p domain.Principal, requestID int64) error {
	// The repository reads owner 0 as "any owner".
	if p.UserID <= 0 {
		return domain.ErrForbidden
	}
	removed, err := s.repo.DeleteIf(ctx, requestID, p.UserID, func(req *domain.ConsultationRequest) error {
		if req.Status.Worked() {
			return &domain.TransitionError{
				From:   req.Status,
				Reason: "cannot delete a request that is already being worked on or finished",
			}
		}
		return nil
	})
	if err != nil {
		s.rejected(err, "delete", requestID)
		return err
	}

	s.observer.RequestDeleted(removed.Status)
	s.logger.Info().
		Int64("request_id", requestID).
		Int64("user_id", p.UserID).
		Str("status", string(removed.Status)).
		Msg("request deleted")
	return nil
}

// History returns the audit trail of a request to its owner or to staff.
func (s *WorkflowService) History(ctx context.Context, p domain.Principal, requestID int64) ([]domain.StatusLog, error) {
	req, err := s.repo.FindByID(ctx, requestID, 0)
	if err != nil {
		return nil, err
	}
	if !p.Role.IsStaff() && req.UserID != p.UserID {
		return nil, domain.ErrForbidden
	}
	logs, err := s.repo.History(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("request history: %w", err)
	}
	return logs, nil
}

// move sets the new status on req and returns the audit row describing it.
func (s *WorkflowService) move(req *domain.ConsultationRequest, by int64, next domain.RequestStatus) *domain.StatusLog {
	at := s.now()
	log := domain.NewStatusLog(req, by, next, at)
	req.Status = next
	req.UpdatedAt = log.ChangedAt
	return log
}

func (s *WorkflowService) changed(requestID, by int64, from, to domain.RequestStatus, actor domain.Actor) {
	s.observer.StatusChanged(from, to, actor)
	s.logger.Info().
		Int64("request_id", requestID).
		Int64("user_id", by).
		Str("old_status", string(from)).
		Str("new_status", string(to)).
		Str("actor", string(actor)).
		Msg("request status changed")
}

func (s *WorkflowService) rejected(err error, op string, requestID int64) {
	var reason string
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		reason = "invalid_transition"
	case errors.Is(err, domain.ErrRequestNotFound):
		reason = "not_found"
	default:
		return
	}
	s.observer.TransitionRejected(reason)
	s.logger.Debug().Err(err).Str("op", op).Int64("request_id", requestID).Msg("transition rejected")
}
