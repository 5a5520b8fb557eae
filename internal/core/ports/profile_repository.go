package ports

import (
	"context"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

type ProfileRepository interface {
	// FindByUserID returns domain.ErrProfileNotFound when the user has none.
	FindByUserID(ctx context.Context, userID int64) (*domain.ClientProfile, error)
	// Upsert inserts or replaces the profile keyed by UserID and sets its ID.
	Upsert(ctx context.Context, profile *domain.ClientProfile) error
}
