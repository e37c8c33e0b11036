package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/metrics"
)

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheOperationsTotal.WithLabelValues("redis", "miss").Inc()
		return false, nil
	}

	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues("redis", "error").Inc()
		return false, fmt.Errorf("redis.Get: %w", err)
	}

	if err = json.Unmarshal(raw, dest); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues("redis", "error").Inc()
		return false, fmt.Errorf("json.Unmarshal: %w", err)
	}

	metrics.CacheOperationsTotal.WithLabelValues("redis", "hit").Inc()

	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err = r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis.Set: %w", err)
	}

	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis.Del: %w", err)
	}

	return nil
}
