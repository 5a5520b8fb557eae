package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

const (
	defaultPageLimit = 25
	maxPageLimit     = 200
)

// QueryService serves read-only request views. It never changes state.
type QueryService struct {
	repo ports.RequestRepository
}

func NewQueryService(repo ports.RequestRepository) *QueryService {
	return &QueryService{repo: repo}
}

// ListMine returns every request owned by the caller, newest first.
func (s *QueryService) ListMine(ctx context.Context, p domain.Principal) ([]domain.RequestView, error) {
	items, err := s.repo.ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list my requests: %w", err)
	}
	if items == nil {
		items = []domain.RequestView{}
	}
	return items, nil
}

// GetMine returns one of the caller's requests. A request owned by someone
// else is reported as forbidden.
func (s *QueryService) GetMine(ctx context.Context, p domain.Principal, requestID int64) (*domain.RequestView, error) {
	req, err := s.repo.FindByID(ctx, requestID, 0)
	if err != nil {
		return nil, err
	}
	if req.UserID != p.UserID {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

// ListAll pages through every request for advisors and admins.
func (s *QueryService) ListAll(ctx context.Context, p domain.Principal, in ports.ListRequestsInput) (*ports.RequestPage, error) {
	if !p.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}
	filter, err := buildListFilter(in)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	if items == nil {
		items = []domain.RequestView{}
	}
	return &ports.RequestPage{Items: items, Total: total}, nil
}

// Stats counts requests per status for advisors and admins.
func (s *QueryService) Stats(ctx context.Context, p domain.Principal) (*domain.RequestStats, error) {
	if !p.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("request stats: %w", err)
	}
	st := domain.NewRequestStats(counts)
	return &st, nil
}

func buildListFilter(in ports.ListRequestsInput) (ports.ListRequestsFilter, error) {
	f := ports.ListRequestsFilter{
		Search: strings.TrimSpace(in.Search),
		Sort:   ports.SortCreatedAt,
		Desc:   true,
		Skip:   in.Skip,
		Limit:  defaultPageLimit,
	}

	if s := strings.TrimSpace(in.Status); s != "" {
		status, err := domain.ParseRequestStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = status
	}

	switch sort := strings.TrimSpace(in.Sort); sort {
	case "":
	case ports.SortCreatedAt, ports.SortUpdatedAt, ports.SortAmount:
		f.Sort = sort
	default:
		return f, domain.NewValidationError("sort", "must be one of: created_at, updated_at, amount")
	}

	switch strings.ToLower(strings.TrimSpace(in.Order)) {
	case "", "desc":
	case "asc":
		f.Desc = false
	default:
		return f, domain.NewValidationError("order", "must be asc or desc")
	}

	if f.Skip < 0 {
		return f, domain.NewValidationError("skip", "must be greater than or equal to 0")
	}
	if in.Limit != nil {
		if *in.Limit < 1 || *in.Limit > maxPageLimit {
			return f, domain.NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", maxPageLimit))
		}
		f.Limit = *in.Limit
	}
	return f, nil
}
