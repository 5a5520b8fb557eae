package ports

import (
	"context"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

// UserRepository defines account persistence.
type UserRepository interface {
	// CreateWithProfile stores user and its base profile in one transaction
	// and assigns both IDs. A taken email yields domain.ErrUserExists.
	CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.ClientProfile) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
