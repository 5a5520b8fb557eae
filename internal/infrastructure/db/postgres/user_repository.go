package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

// UserRepository implements ports.UserRepository on PostgreSQL.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.ClientProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		um := newUserModel(user)
		if err := tx.Create(&um).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrUserExists
			}
			return fmt.Errorf("postgres: insert user: %w", err)
		}

		profile.UserID = um.ID
		pm, err := newProfileModel(profile)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&pm).Error; err != nil {
			return fmt.Errorf("postgres: insert profile: %w", err)
		}

		user.ID = um.ID
		profile.ID = pm.ID
		return nil
	})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres: find user: %w", err)
	}
	return m.toDomain(), nil
}
