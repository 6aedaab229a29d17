package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"SignalDesk/pkg/logger"
)

// Memoizer caches results of deterministic operations in a TieredCache.
// Concurrent misses on the same key run the operation once.
type Memoizer struct {
	cache *TieredCache
	group singleflight.Group
	log   *logger.Logger
}

func NewMemoizer(c *TieredCache, log *logger.Logger) *Memoizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Memoizer{cache: c, log: log}
}

// Cache returns the underlying cache.
func (m *Memoizer) Cache() *TieredCache {
	return m.cache
}

// Invalidate drops every memoized result of op.
func (m *Memoizer) Invalidate(ctx context.Context, op string) (int, error) {
	return m.cache.Invalidate(ctx, BuildPattern(op))
}

// Memoize returns the cached result of op(args) or computes it with fn and
// stores it for ttl. Errors from fn are returned as-is and never cached.
func Memoize[T any](ctx context.Context, m *Memoizer, op string, ttl time.Duration, fn func(context.Context) (T, error), args ...any) (T, error) {
	var zero T
	key, err := OperationKey(op, args...)
	if err != nil {
		return zero, err
	}

	if data, err := m.cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		m.log.Debug("discarding undecodable cache entry", logger.String("key", key))
	}

	res, err, _ := m.group.Do(key, func() (any, error) {
		start := time.Now()
		v, err := fn(ctx)
		m.cache.ObserveOperation(op, time.Since(start))
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("memoize %s: encode: %w", op, err)
		}
		if err := m.cache.Put(ctx, key, data, ttl); err != nil {
			m.log.Warn("memoize store failed", logger.String("key", key), logger.Error(err))
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}
