package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db, coll: db.Collection(collectionUsers)}
}

// CreateWithProfile inserts the user and its base profile in one transaction.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.ClientProfile) error {
	return inTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		uid, err := nextID(sc, r.db, collectionUsers)
		if err != nil {
			return err
		}
		doc := userDoc{
			ID:           uid,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			Role:         string(user.Role),
			CreatedAt:    user.CreatedAt.UTC(),
		}
		if _, err := r.coll.InsertOne(sc, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrUserExists
			}
			return fmt.Errorf("insert user: %w", err)
		}

		pid, err := nextID(sc, r.db, collectionProfiles)
		if err != nil {
			return err
		}
		profile.ID = pid
		profile.UserID = uid
		if _, err := r.db.Collection(collectionProfiles).InsertOne(sc, newProfileDoc(profile)); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}

		user.ID = uid
		return nil
	})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return d.toDomain(), nil
}
