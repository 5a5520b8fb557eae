package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

var profileColumns = []string{
	"first_name", "last_name", "date_of_birth", "phone", "income",
	"main_goal", "time_horizon_years", "risk_profile", "updated_at",
}

// ProfileRepository implements ports.ProfileRepository on PostgreSQL.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID int64) (*domain.ClientProfile, error) {
	var m profileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("postgres: find profile: %w", err)
	}
	return m.toDomain(), nil
}

// Upsert writes every column on conflict, so omitted optional fields are cleared.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.ClientProfile) error {
	m, err := newProfileModel(profile)
	if err != nil {
		return err
	}
	m.ID = 0

	err = r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(profileColumns),
		}).
		Create(&m).Error
	if err != nil {
		return fmt.Errorf("postgres: upsert profile: %w", err)
	}
	profile.ID = m.ID
	return nil
}
