package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss          = errors.New("cache: key not found")
	ErrBackendUnavailable = errors.New("cache: backend unavailable")
	ErrInvalidTTL         = errors.New("cache: ttl must be positive")
)

// MatchAll is the invalidation pattern that matches every key.
const MatchAll = "*"

// Stats is an approximate view of what a store holds.
type Stats struct {
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes"`
}

// Store is the contract every cache tier satisfies. Get returns ErrCacheMiss
// for absent or expired keys. Invalidate takes a doublestar glob and returns
// the number of entries removed. "*" stops at "/" while "**" spans segments.
// MatchAll is special and removes every key. An invalid pattern fails with
// doublestar.ErrBadPattern.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

// Observer receives cache events. pkg/metrics.Recorder implements it.
type Observer interface {
	CacheHit(tier string)
	CacheMiss()
	CacheBackendError(op string)
	CacheDegraded(degraded bool)
	OperationLatency(op string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) CacheHit(string)                        {}
func (nopObserver) CacheMiss()                             {}
func (nopObserver) CacheBackendError(string)               {}
func (nopObserver) CacheDegraded(bool)                     {}
func (nopObserver) OperationLatency(string, time.Duration) {}
