package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client supplied request keys so a retried
// write (for example a payment POST with the same Idempotency-Key) is applied once.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget removes a key, used when the guarded operation failed and may be retried
	Forget(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
