package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 200

// RedisStore implements Store on Redis. Keys are namespaced with a prefix so
// MatchAll only ever touches this store's keys.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store. It does not require the server to
// be reachable; call Ping to check.
func NewRedisStore(opts ...RedisOption) *RedisStore {
	cfg := &RedisConfig{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		DialTimeout:  2 * time.Second,
		MinIdleConns: 2,
		Prefix:       "signaldesk",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		DialTimeout:  cfg.DialTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})
	return NewRedisStoreFromClient(client, cfg.Prefix)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Client returns underlying redis client.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.wrapKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, unavailable("get", err)
	}
	return data, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	if err := s.client.Set(ctx, s.wrapKey(key), value, ttl).Err(); err != nil {
		return unavailable("put", err)
	}
	return nil
}

// Invalidate walks candidate keys with SCAN, filters them with the same glob
// grammar as MemoryStore and removes the matches with UNLINK. MATCH only
// narrows the scan to the pattern's literal prefix.
func (s *RedisStore) Invalidate(ctx context.Context, pattern string) (int, error) {
	if !doublestar.ValidatePattern(pattern) {
		return 0, fmt.Errorf("invalidate %q: %w", pattern, doublestar.ErrBadPattern)
	}

	match := s.wrapKey(literalPrefix(pattern)) + "*"
	removed := 0
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return removed, unavailable("scan", err)
		}
		hits := keys[:0]
		for _, k := range keys {
			if pattern == MatchAll || doublestar.MatchUnvalidated(pattern, s.unwrapKey(k)) {
				hits = append(hits, k)
			}
		}
		if len(hits) > 0 {
			n, err := s.client.Unlink(ctx, hits...).Result()
			if err != nil {
				return removed, unavailable("unlink", err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

// literalPrefix returns the part of a glob before its first meta character.
// It never contains a Redis MATCH special.
func literalPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, `*?[{\`); i >= 0 {
		return pattern[:i]
	}
	return pattern
}

// Stats counts this store's keys and sums their value sizes.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.wrapKey(MatchAll), scanBatch).Result()
		if err != nil {
			return st, unavailable("scan", err)
		}
		if len(keys) > 0 {
			pipe := s.client.Pipeline()
			lens := make([]*redis.IntCmd, len(keys))
			for i, k := range keys {
				lens[i] = pipe.StrLen(ctx, k)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return st, unavailable("strlen", err)
			}
			for i, k := range keys {
				st.Entries++
				st.Bytes += int64(len(s.unwrapKey(k))) + lens[i].Val()
			}
		}
		cursor = next
		if cursor == 0 {
			return st, nil
		}
	}
}

func (s *RedisStore) wrapKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *RedisStore) unwrapKey(key string) string {
	return strings.TrimPrefix(key, s.prefix+":")
}

func unavailable(op string, err error) error {
	return fmt.Errorf("redis %s: %w: %v", op, ErrBackendUnavailable, err)
}
