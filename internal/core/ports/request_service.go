package ports

import (
	"context"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

// CreateRequestInput carries a new request. IdempotencyKey is optional.
type CreateRequestInput struct {
	Principal      domain.Principal
	Draft          domain.RequestDraft
	IdempotencyKey string
}

// CreateRequestResult is returned by Create. Replayed is true when the
// Idempotency-Key matched a request created earlier.
type CreateRequestResult struct {
	Request  *domain.RequestView
	Replayed bool
}

// CancelResult reports the status before and after a client cancel.
type CancelResult struct {
	OldStatus domain.RequestStatus
	NewStatus domain.RequestStatus
}

// ListRequestsInput holds raw query parameters of the advisor listing.
type ListRequestsInput struct {
	Status string
	Search string
	Sort   string
	Order  string
	Skip   int
	Limit  *int // nil means the default page size
}

// RequestPage is one page of the advisor listing.
type RequestPage struct {
	Items []domain.RequestView
	Total int64
}

// WorkflowService owns every status mutation of a consultation request.
type WorkflowService interface {
	Create(ctx context.Context, in CreateRequestInput) (*CreateRequestResult, error)
	Cancel(ctx context.Context, p domain.Principal, requestID int64) (*CancelResult, error)
	SetStatus(ctx context.Context, p domain.Principal, requestID int64, status string) (*domain.RequestView, error)
	Delete(ctx context.Context, p domain.Principal, requestID int64) error
	History(ctx context.Context, p domain.Principal, requestID int64) ([]domain.StatusLog, error)
}

// QueryService serves the read-only request views.
type QueryService interface {
	ListMine(ctx context.Context, p domain.Principal) ([]domain.RequestView, error)
	GetMine(ctx context.Context, p domain.Principal, requestID int64) (*domain.RequestView, error)
	ListAll(ctx context.Context, p domain.Principal, in ListRequestsInput) (*RequestPage, error)
	Stats(ctx context.Context, p domain.Principal) (*domain.RequestStats, error)
}
