package ports

import (
	"context"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

type ProfileService interface {
	Get(ctx context.Context, p domain.Principal) (*domain.ClientProfile, error)
	Upsert(ctx context.Context, p domain.Principal, draft domain.ProfileDraft) (*domain.ClientProfile, error)
}
