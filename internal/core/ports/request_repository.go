package ports

import (
	"context"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

// Sortable columns for ListRequestsFilter.Sort.
const (
	SortCreatedAt = "created_at"
	SortUpdatedAt = "updated_at"
	SortAmount    = "amount"
)

// ListRequestsFilter carries the advisor listing query. Status and Search
// combine with AND.
type ListRequestsFilter struct {
	Status domain.RequestStatus // empty = any status
	Search string               // case-insensitive substring on goal, notes or owner email
	Sort   string               // one of the Sort* columns
	Desc   bool
	Skip   int
	Limit  int
}

// TransitionFunc decides a status change on a request loaded under lock.
// It mutates req and returns the audit row to persist with it. A nil log
// with a nil error means there is nothing to write.
type TransitionFunc func(req *domain.ConsultationRequest) (*domain.StatusLog, error)

// DeleteGuard vetoes a hard delete by returning an error.
type DeleteGuard func(req *domain.ConsultationRequest) error

// RequestRepository persists consultation requests and their audit trail.
//
// Every method taking an ownerID treats 0 as "any owner"; a non-zero value
// scopes the lookup so a foreign request is reported as ErrRequestNotFound.
type RequestRepository interface {
	// Create inserts req and assigns its ID.
	Create(ctx context.Context, req *domain.ConsultationRequest) error
	FindByID(ctx context.Context, id, ownerID int64) (*domain.RequestView, error)
	// ListByOwner returns the owner's requests, newest first.
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.RequestView, error)
	// List returns one page matching filter and the total before paging.
	List(ctx context.Context, filter ListRequestsFilter) ([]domain.RequestView, int64, error)
	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error)

	// ApplyTransition locks the request, runs fn and commits the status
	// update together with the returned audit row. Both land or neither does.
	ApplyTransition(ctx context.Context, id, ownerID int64, fn TransitionFunc) (*domain.RequestView, error)
	// DeleteIf hard-deletes the request when guard accepts it and returns
	// the row as it was before removal.
	DeleteIf(ctx context.Context, id, ownerID int64, guard DeleteGuard) (*domain.ConsultationRequest, error)
	// History returns the audit rows of a request, most recent first.
	History(ctx context.Context, requestID int64) ([]domain.StatusLog, error)
}
