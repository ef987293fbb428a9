package cache

import (
	"time"

	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// NewIdempotencyStore returns a Redis backed store when client is set,
// otherwise an in-memory one
func NewIdempotencyStore(client *redis.Client) shared.IdempotencyStore {
	if client != nil {
		return NewRedisIdempotencyStore(client, "")
	}
	return NewInMemoryIdempotencyStore(5 * time.Minute)
}

// NewLocker returns a Redis backed locker when useRedis is set and a client
// exists, otherwise an in-memory one
func NewLocker(client *redis.Client, useRedis bool) shared.Locker {
	if useRedis && client != nil {
		return NewRedisLocker(client, "")
	}
	return NewInMemoryLocker()
}
