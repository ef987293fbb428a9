package shared

import (
	"context"
	"time"
)

// Locker serializes work on a key across goroutines, and across instances
// when backed by a shared store.
type Locker interface {
	// Acquire blocks until the key is held, ttl elapses or ctx is done.
	// Failing to acquire within ttl returns a CONCURRENCY_CONFLICT error.
	// The returned release func is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
