// Package cache provides the read-through store for upstream responses.
// Values are serialized as JSON so the memory and Redis implementations
// behave identically.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	// Get unmarshals the cached value into dest and reports whether the key
	// was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Backend names accepted by New, selected with CACHE_BACKEND.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// New picks the cache backend. Redis is the production default; memory
// serves single-process deployments that have no shared cache to keep warm.
func New(backend string, client *redis.Client) Cache {
	if backend == BackendMemory {
		return NewMemory()
	}

	return NewRedis(client)
}
