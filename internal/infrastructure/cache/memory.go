package cache

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	gocache "github.com/patrickmn/go-cache"

	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const memoryCleanupInterval = 10 * time.Minute

type Memory struct {
	store *gocache.Cache
}

func NewMemory() *Memory {
	return &Memory{
		store: gocache.New(gocache.NoExpiration, memoryCleanupInterval),
	}
}

func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	value, found := m.store.Get(key)
	if !found {
		metrics.CacheOperationsTotal.WithLabelValues("memory", "miss").Inc()
		return false, nil
	}

	raw, ok := value.([]byte)
	if !ok {
		metrics.CacheOperationsTotal.WithLabelValues("memory", "error").Inc()
		return false, fmt.Errorf("unexpected cache value type %T", value)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues("memory", "error").Inc()
		return false, fmt.Errorf("json.Unmarshal: %w", err)
	}

	metrics.CacheOperationsTotal.WithLabelValues("memory", "hit").Inc()

	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	m.store.Set(key, raw, ttl)

	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.store.Delete(key)

	return nil
}
