package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

type memoryEntry struct {
	value     []byte
	createdAt time.Time
	expireAt  time.Time
	accessAt  time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !now.Before(e.expireAt)
}

// MemoryStore implements Store in process memory. Expired entries are dropped
// lazily on read, on Invalidate and on Sweep. When full, the least recently
// accessed entry is evicted.
type MemoryStore struct {
	data    map[string]*memoryEntry
	mutex   sync.Mutex
	maxSize int
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	cfg := &MemoryConfig{
		MaxSize: 10000,
		Clock:   time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &MemoryStore{
		data:    make(map[string]*memoryEntry),
		maxSize: cfg.MaxSize,
		now:     cfg.Clock,
	}
}

func (ms *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	now := ms.now()
	entry, exists := ms.data[key]
	if !exists {
		return nil, ErrCacheMiss
	}
	if entry.expired(now) {
		delete(ms.data, key)
		return nil, ErrCacheMiss
	}
	entry.accessAt = now
	return entry.value, nil
}

func (ms *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	now := ms.now()
	if _, exists := ms.data[key]; !exists && ms.maxSize > 0 && len(ms.data) >= ms.maxSize {
		if ms.sweepLocked(now) == 0 {
			ms.evictLRU()
		}
	}

	buf := make([]byte, len(value))
	copy(buf, value)
	ms.data[key] = &memoryEntry{
		value:     buf,
		createdAt: now,
		expireAt:  now.Add(ttl),
		accessAt:  now,
	}
	return nil
}

// Invalidate removes every live entry whose key matches the glob pattern and
// reclaims expired entries along the way.
func (ms *MemoryStore) Invalidate(_ context.Context, pattern string) (int, error) {
	if !doublestar.ValidatePattern(pattern) {
		return 0, fmt.Errorf("invalidate %q: %w", pattern, doublestar.ErrBadPattern)
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	now := ms.now()
	removed := 0
	for key, entry := range ms.data {
		if entry.expired(now) {
			delete(ms.data, key)
			continue
		}
		if pattern == MatchAll || doublestar.MatchUnvalidated(pattern, key) {
			delete(ms.data, key)
			removed++
		}
	}
	return removed, nil
}

func (ms *MemoryStore) Stats(_ context.Context) (Stats, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	now := ms.now()
	var st Stats
	for key, entry := range ms.data {
		if entry.expired(now) {
			continue
		}
		st.Entries++
		st.Bytes += int64(len(key) + len(entry.value))
	}
	return st, nil
}

// Sweep drops expired entries and returns how many were removed.
func (ms *MemoryStore) Sweep() int {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	return ms.sweepLocked(ms.now())
}

// Len returns the number of stored entries, expired or not.
func (ms *MemoryStore) Len() int {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	return len(ms.data)
}

func (ms *MemoryStore) sweepLocked(now time.Time) int {
	n := 0
	for key, entry := range ms.data {
		if entry.expired(now) {
			delete(ms.data, key)
			n++
		}
	}
	return n
}

func (ms *MemoryStore) evictLRU() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range ms.data {
		if oldestKey == "" || entry.accessAt.Before(oldest) {
			oldest = entry.accessAt
			oldestKey = key
		}
	}
	if oldestKey != "" {
		delete(ms.data, oldestKey)
	}
}
