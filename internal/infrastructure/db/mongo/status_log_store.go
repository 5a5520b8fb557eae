package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
)

// statusLogStore owns the append-only audit collection. Entries are never
// removed, not even when their request is deleted.
type statusLogStore struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func newStatusLogStore(db *mongo.Database) *statusLogStore {
	return &statusLogStore{db: db, coll: db.Collection(collectionStatusLogs)}
}

// insert persists entry and assigns its ID. ctx may carry a session.
func (s *statusLogStore) insert(ctx context.Context, entry *domain.StatusLog) error {
	id, err := nextID(ctx, s.db, collectionStatusLogs)
	if err != nil {
		return err
	}
	entry.ID = id
	if _, err := s.coll.InsertOne(ctx, newStatusLogDoc(entry)); err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}
	return nil
}

// list returns the entries of one request, most recent first.
func (s *statusLogStore) list(ctx context.Context, requestID int64) ([]domain.StatusLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.coll.Find(ctx,
		bson.M{"request_id": requestID},
		options.Find().SetSort(bson.D{{Key: "changed_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find status logs: %w", err)
	}

	var docs []statusLogDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode status logs: %w", err)
	}

	out := make([]domain.StatusLog, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
