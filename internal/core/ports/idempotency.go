package ports

import "context"

// IdempotencyStore remembers which request an owner created under a client
// supplied Idempotency-Key.
type IdempotencyStore interface {
	Lookup(ctx context.Context, ownerID int64, key string) (requestID int64, found bool, err error)
	Remember(ctx context.Context, ownerID int64, key string, requestID int64) error
}
