package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

// ProfileService reads and replaces the caller's client profile.
type ProfileService struct {
	repo   ports.ProfileRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewProfileService(repo ports.ProfileRepository, logger zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, logger: logger, now: time.Now}
}

func (s *ProfileService) Get(ctx context.Context, p domain.Principal) (*domain.ClientProfile, error) {
	return s.repo.FindByUserID(ctx, p.UserID)
}

// Upsert creates the profile on first write and overwrites every field after that.
func (s *ProfileService) Upsert(ctx context.Context, p domain.Principal, draft domain.ProfileDraft) (*domain.ClientProfile, error) {
	profile, err := domain.NewClientProfile(p.UserID, draft, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	s.logger.Info().Int64("user_id", p.UserID).Msg("profile saved")
	return profile, nil
}
