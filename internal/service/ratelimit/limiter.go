package ratelimit

import (
	"errors"
	"sync"
	"time"
)

var ErrRateLimited = errors.New("rate limited")

// Limiter is a sliding-window log: an identity may make at most limit calls in
// any window-long interval.
type Limiter struct {
	mu     sync.Mutex
	m      map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		m:      make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a call for key and reports whether it fits in the window.
// Rejected calls are not recorded.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()

	hits := trim(l.m[key], now.Add(-l.window))
	if len(hits) >= l.limit {
		l.m[key] = hits
		return false
	}
	l.m[key] = append(hits, now)
	return true
}

// Take is Allow returning ErrRateLimited on rejection. It never blocks.
func (l *Limiter) Take(key string) error {
	if !l.Allow(key) {
		return ErrRateLimited
	}
	return nil
}

// Remaining returns how many calls key may still make right now.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()

	hits := trim(l.m[key], now.Add(-l.window))
	l.m[key] = hits
	if len(hits) == 0 {
		delete(l.m, key)
	}
	return max(l.limit-len(hits), 0)
}

// Prune drops timestamps that left the window and forgets idle identities.
// It returns the number of identities removed.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.window)

	removed := 0
	for key, hits := range l.m {
		hits = trim(hits, cutoff)
		if len(hits) == 0 {
			delete(l.m, key)
			removed++
			continue
		}
		l.m[key] = hits
	}
	return removed
}

// Identities returns the number of tracked identities.
func (l *Limiter) Identities() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

// trim drops timestamps at or before cutoff. hits is ascending.
func trim(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0], hits[i:]...)
}
