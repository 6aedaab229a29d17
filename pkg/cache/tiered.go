package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"SignalDesk/pkg/logger"
)

const (
	TierShared = "shared"
	TierLocal  = "local"
)

// Metrics is a snapshot of the tiered cache counters.
type Metrics struct {
	Hits       uint64        `json:"hits"`
	Misses     uint64        `json:"misses"`
	Requests   uint64        `json:"total_requests"`
	HitRate    float64       `json:"hit_rate"`
	MissRate   float64       `json:"miss_rate"`
	Entries    int           `json:"entries"`
	Bytes      int64         `json:"approx_bytes"`
	AvgLatency time.Duration `json:"avg_latency_ns"`
	Degraded   bool          `json:"degraded"`
	Tier       string        `json:"tier"`
}

// TieredCache puts an optional shared store in front of a local MemoryStore.
// While the shared store is healthy it serves every call. A backend error
// switches all traffic to the local store for RetryAfter, after which the
// shared store is tried again.
type TieredCache struct {
	shared     Store
	local      *MemoryStore
	log        *logger.Logger
	obs        Observer
	retryAfter time.Duration
	now        func() time.Time

	mu            sync.Mutex
	degraded      atomic.Bool
	degradedUntil time.Time
	// patterns the shared tier missed while failing; replayed before it
	// serves again
	pending []string

	hits     atomic.Uint64
	misses   atomic.Uint64
	ops      atomic.Uint64
	opsNanos atomic.Int64
}

// NewTieredCache builds the cache. shared may be nil for a local-only cache.
func NewTieredCache(shared Store, local *MemoryStore, opts ...TieredOption) *TieredCache {
	cfg := &TieredConfig{
		RetryAfter: 30 * time.Second,
		Clock:      time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if local == nil {
		local = NewMemoryStore()
	}

	return &TieredCache{
		shared:     shared,
		local:      local,
		log:        cfg.Logger,
		obs:        cfg.Observer,
		retryAfter: cfg.RetryAfter,
		now:        cfg.Clock,
	}
}

func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.useShared(ctx) {
		v, err := c.shared.Get(ctx, key)
		switch {
		case err == nil:
			c.recovered()
			c.hit(TierShared)
			return v, nil
		case errors.Is(err, ErrCacheMiss):
			c.recovered()
			c.miss()
			return nil, ErrCacheMiss
		default:
			c.fail("get", err)
		}
	}

	v, err := c.local.Get(ctx, key)
	if err != nil {
		c.miss()
		return nil, ErrCacheMiss
	}
	c.hit(TierLocal)
	return v, nil
}

func (c *TieredCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	if c.useShared(ctx) {
		err := c.shared.Put(ctx, key, value, ttl)
		if err == nil {
			c.recovered()
			return nil
		}
		c.fail("put", err)
	}
	return c.local.Put(ctx, key, value, ttl)
}

// Invalidate clears matching keys from both tiers. The shared tier is tried
// even while degraded. A pattern the shared tier cannot apply is queued and
// replayed before the shared tier serves any further call, so entries it
// matched are never read back.
func (c *TieredCache) Invalidate(ctx context.Context, pattern string) (int, error) {
	removed, err := c.local.Invalidate(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if c.shared == nil {
		return removed, nil
	}
	if err := c.replayPending(ctx); err != nil {
		c.deferInvalidation(pattern)
		c.fail("invalidate", err)
		return removed, nil
	}
	n, err := c.shared.Invalidate(ctx, pattern)
	if err != nil {
		c.deferInvalidation(pattern)
		c.fail("invalidate", err)
		return removed, nil
	}
	c.recovered()
	return removed + n, nil
}

// PendingInvalidations returns the patterns waiting to be replayed against
// the shared tier.
func (c *TieredCache) PendingInvalidations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.pending...)
}

// Stats reports the tier currently serving traffic.
func (c *TieredCache) Stats(ctx context.Context) (Stats, error) {
	if c.useShared(ctx) {
		st, err := c.shared.Stats(ctx)
		if err == nil {
			return st, nil
		}
		c.fail("stats", err)
	}
	return c.local.Stats(ctx)
}

// Metrics returns counters together with the serving tier's size.
func (c *TieredCache) Metrics(ctx context.Context) Metrics {
	hits, misses := c.hits.Load(), c.misses.Load()
	m := Metrics{
		Hits:     hits,
		Misses:   misses,
		Requests: hits + misses,
	}
	if m.Requests > 0 {
		m.HitRate = float64(hits) / float64(m.Requests)
		m.MissRate = float64(misses) / float64(m.Requests)
	}
	if ops := c.ops.Load(); ops > 0 {
		m.AvgLatency = time.Duration(c.opsNanos.Load() / int64(ops))
	}
	if st, err := c.Stats(ctx); err == nil {
		m.Entries = st.Entries
		m.Bytes = st.Bytes
	}
	m.Degraded = c.degraded.Load()
	m.Tier = TierLocal
	if c.shared != nil && !m.Degraded {
		m.Tier = TierShared
	}
	return m
}

// ResetStats zeroes the hit/miss and latency counters.
func (c *TieredCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.ops.Store(0)
	c.opsNanos.Store(0)
}

// ObserveOperation records the latency of a wrapped computation.
func (c *TieredCache) ObserveOperation(op string, d time.Duration) {
	c.ops.Add(1)
	c.opsNanos.Add(int64(d))
	c.obs.OperationLatency(op, d)
}

// Degraded reports whether the local tier is currently serving traffic in
// place of the shared one.
func (c *TieredCache) Degraded() bool {
	return c.degraded.Load()
}

// Local exposes the local tier for sweeping.
func (c *TieredCache) Local() *MemoryStore {
	return c.local
}

// useShared reports whether the shared tier may serve the call. Once the
// retry window has passed, queued invalidations are replayed first; a failed
// replay keeps the cache degraded for another window.
func (c *TieredCache) useShared(ctx context.Context) bool {
	if c.shared == nil {
		return false
	}
	if !c.degraded.Load() {
		return true
	}
	c.mu.Lock()
	ready := !c.now().Before(c.degradedUntil)
	c.mu.Unlock()
	if !ready {
		return false
	}
	if err := c.replayPending(ctx); err != nil {
		c.fail("replay", err)
		return false
	}
	return true
}

// maxPending bounds the replay queue; past it the queue collapses to MatchAll.
const maxPending = 256

func (c *TieredCache) deferInvalidation(pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.pending {
		if p == pattern || p == MatchAll {
			return
		}
	}
	if pattern == MatchAll || len(c.pending) >= maxPending {
		c.pending = []string{MatchAll}
		return
	}
	c.pending = append(c.pending, pattern)
}

func (c *TieredCache) replayPending(ctx context.Context) error {
	for _, p := range c.PendingInvalidations() {
		if _, err := c.shared.Invalidate(ctx, p); err != nil {
			return err
		}
		c.mu.Lock()
		for i, q := range c.pending {
			if q == p {
				c.pending = append(c.pending[:i], c.pending[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
	}
	return nil
}

func (c *TieredCache) fail(op string, err error) {
	c.mu.Lock()
	c.degradedUntil = c.now().Add(c.retryAfter)
	c.mu.Unlock()

	c.obs.CacheBackendError(op)
	if c.degraded.CompareAndSwap(false, true) {
		c.obs.CacheDegraded(true)
		c.log.Warn("shared cache unavailable, serving from local tier",
			logger.String("op", op),
			logger.Duration("retry_after_ms", c.retryAfter),
			logger.Error(err),
		)
	}
}

func (c *TieredCache) recovered() {
	c.mu.Lock()
	pending := len(c.pending)
	c.mu.Unlock()
	if pending > 0 {
		return
	}
	if c.degraded.CompareAndSwap(true, false) {
		c.obs.CacheDegraded(false)
		c.log.Info("shared cache recovered")
	}
}

func (c *TieredCache) hit(tier string) {
	c.hits.Add(1)
	c.obs.CacheHit(tier)
}

func (c *TieredCache) miss() {
	c.misses.Add(1)
	c.obs.CacheMiss()
}
