package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

// ProfileRepository implements ports.ProfileRepository using MongoDB.
type ProfileRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{db: db, coll: db.Collection(collectionProfiles)}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID int64) (*domain.ClientProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d profileDoc
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return d.toDomain(), nil
}

// Upsert replaces every field of the user's profile, creating it when absent.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.ClientProfile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.profileID(ctx, profile.UserID)
	if err != nil {
		return err
	}

	doc := newProfileDoc(profile)
	set := bson.M{
		"first_name":         doc.FirstName,
		"last_name":          doc.LastName,
		"date_of_birth":      doc.DateOfBirth,
		"phone":              doc.Phone,
		"income":             doc.Income,
		"main_goal":          doc.MainGoal,
		"time_horizon_years": doc.TimeHorizonYears,
		"risk_profile":       doc.RiskProfile,
		"updated_at":         doc.UpdatedAt,
	}

	var stored profileDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"user_id": profile.UserID},
		bson.M{"$set": set, "$setOnInsert": bson.M{"_id": id}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&stored)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	profile.ID = stored.ID
	return nil
}

// profileID returns the id of the existing profile or allocates a new one.
func (r *ProfileRepository) profileID(ctx context.Context, userID int64) (int64, error) {
	var existing struct {
		ID int64 `bson:"_id"`
	}
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Decode(&existing)
	switch {
	case err == nil:
		return existing.ID, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nextID(ctx, r.db, collectionProfiles)
	default:
		return 0, fmt.Errorf("find profile: %w", err)
	}
}
