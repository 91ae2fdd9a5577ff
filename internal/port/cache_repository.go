package port

import (
	"context"
	"time"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency removes the key so the request can be submitted again
	ReleaseIdempotency(ctx context.Context, key string) error

	// NextSequence atomically increments the counter at key, which expires after ttl
	NextSequence(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
