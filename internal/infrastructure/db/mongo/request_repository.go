package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

var sortFields = map[string]string{
	ports.SortCreatedAt: "created_at",
	ports.SortUpdatedAt: "updated_at",
	ports.SortAmount:    "amount",
}

// statusMoved refuses a change to a request whose status moved after it was read.
func statusMoved(from, to domain.RequestStatus) error {
	return &domain.TransitionError{
		From:   from,
		To:     to,
		Reason: "request status changed concurrently, reload and retry",
	}
}

// RequestRepository implements ports.RequestRepository using MongoDB.
type RequestRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
	logs *statusLogStore
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{
		db:   db,
		coll: db.Collection(collectionRequests),
		logs: newStatusLogStore(db),
	}
}

// Create inserts a new request document.
func (r *RequestRepository) Create(ctx context.Context, req *domain.ConsultationRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, collectionRequests)
	if err != nil {
		return err
	}
	req.ID = id
	if _, err := r.coll.InsertOne(ctx, newRequestDoc(req)); err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id, ownerID int64) (*domain.RequestView, error) {
	views, err := r.aggregate(ctx, withOwner(ownerFilter(id, ownerID)))
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, domain.ErrRequestNotFound
	}
	return &views[0], nil
}

func (r *RequestRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.RequestView, error) {
	pipeline := withOwner(bson.M{"user_id": ownerID})
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	}}})
	return r.aggregate(ctx, pipeline)
}

func (r *RequestRepository) List(ctx context.Context, f ports.ListRequestsFilter) ([]domain.RequestView, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Aggregate(ctx, listPipeline(f))
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate requests: %w", err)
	}

	var out []struct {
		Items []requestViewDoc `bson:"items"`
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode requests: %w", err)
	}

	views := []domain.RequestView{}
	var total int64
	if len(out) > 0 {
		for _, d := range out[0].Items {
			views = append(views, d.toDomain())
		}
		if len(out[0].Total) > 0 {
			total = out[0].Total[0].N
		}
	}
	return views, total, nil
}

func (r *RequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	var rows []struct {
		Status string `bson:"_id"`
		N      int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode counts: %w", err)
	}

	out := make(map[domain.RequestStatus]int64, len(rows))
	for _, row := range rows {
		out[domain.RequestStatus(row.Status)] = row.N
	}
	return out, nil
}

// ApplyTransition updates the status and appends the audit entry in one
// transaction. The update is conditioned on the status read inside the
// transaction, so a concurrent change aborts instead of being overwritten.
func (r *RequestRepository) ApplyTransition(ctx context.Context, id, ownerID int64, fn ports.TransitionFunc) (*domain.RequestView, error) {
	err := inTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		var doc requestDoc
		if err := r.coll.FindOne(sc, ownerFilter(id, ownerID)).Decode(&doc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return domain.ErrRequestNotFound
			}
			return fmt.Errorf("find request: %w", err)
		}

		req := doc.toDomain()
		entry, err := fn(&req)
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}

		res, err := r.coll.UpdateOne(sc,
			bson.M{"_id": id, "status": doc.Status},
			bson.M{"$set": bson.M{
				"status":     string(req.Status),
				"updated_at": req.UpdatedAt.UTC(),
			}},
		)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if res.MatchedCount == 0 {
			return statusMoved(domain.RequestStatus(doc.Status), req.Status)
		}
		return r.logs.insert(sc, entry)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id, 0)
}

func (r *RequestRepository) DeleteIf(ctx context.Context, id, ownerID int64, guard ports.DeleteGuard) (*domain.ConsultationRequest, error) {
	var deleted domain.ConsultationRequest
	err := inTransaction(ctx, r.db, func(sc mongo.SessionContext) error {
		var doc requestDoc
		if err := r.coll.FindOne(sc, ownerFilter(id, ownerID)).Decode(&doc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return domain.ErrRequestNotFound
			}
			return fmt.Errorf("find request: %w", err)
		}

		deleted = doc.toDomain()
		if err := guard(&deleted); err != nil {
			return err
		}

		res, err := r.coll.DeleteOne(sc, bson.M{"_id": id, "status": doc.Status})
		if err != nil {
			return fmt.Errorf("delete request: %w", err)
		}
		if res.DeletedCount == 0 {
			return statusMoved(domain.RequestStatus(doc.Status), "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (r *RequestRepository) History(ctx context.Context, requestID int64) ([]domain.StatusLog, error) {
	return r.logs.list(ctx, requestID)
}

func (r *RequestRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]domain.RequestView, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate requests: %w", err)
	}

	var docs []requestViewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}

	out := make([]domain.RequestView, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func ownerFilter(id, ownerID int64) bson.M {
	filter := bson.M{"_id": id}
	if ownerID != 0 {
		filter["user_id"] = ownerID
	}
	return filter
}

// withOwner matches requests and joins the owning user's email and role.
func withOwner(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$unwind", Value: "$owner"}},
		{{Key: "$set", Value: bson.M{
			"owner_email": "$owner.email",
			"owner_role":  "$owner.role",
		}}},
		{{Key: "$unset", Value: "owner"}},
	}
}

func listPipeline(f ports.ListRequestsFilter) mongo.Pipeline {
	match := bson.M{}
	if f.Status != "" {
		match["status"] = string(f.Status)
	}
	pipeline := withOwner(match)

	if s := strings.TrimSpace(f.Search); s != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"goal": re},
			bson.M{"notes": re},
			bson.M{"owner_email": re},
		}}}})
	}

	field, ok := sortFields[f.Sort]
	if !ok {
		field = sortFields[ports.SortCreatedAt]
	}
	dir := 1
	if f.Desc {
		dir = -1
	}

	page := bson.A{
		bson.M{"$sort": bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}},
	}
	if f.Skip > 0 {
		page = append(page, bson.M{"$skip": f.Skip})
	}
	if f.Limit > 0 {
		page = append(page, bson.M{"$limit": f.Limit})
	}

	return append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"items": page,
		"total": bson.A{bson.M{"$count": "n"}},
	}}})
}
