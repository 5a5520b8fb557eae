package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore maps (owner, Idempotency-Key) to the request it created.
// Key format: idem:<owner_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps the given client. A non-positive ttl falls back to 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup returns the request id remembered for this owner and key.
func (s *IdempotencyStore) Lookup(ctx context.Context, ownerID int64, key string) (int64, bool, error) {
	raw, err := s.client.Get(ctx, idempotencyKey(ownerID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: corrupt value %q: %w", raw, err)
	}
	return id, true, nil
}

// Remember stores the mapping unless one already exists; the first writer wins.
func (s *IdempotencyStore) Remember(ctx context.Context, ownerID int64, key string, requestID int64) error {
	err := s.client.SetArgs(ctx, idempotencyKey(ownerID, key), requestID, redis.SetArgs{
		Mode: "NX",
		TTL:  s.ttl,
	}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func idempotencyKey(ownerID int64, key string) string {
	return fmt.Sprintf("idem:%d:%s", ownerID, key)
}
