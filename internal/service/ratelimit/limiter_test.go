package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestLimiterSlidingWindow(t *testing.T) {
	clk := &clock{t: time.Unix(1000, 0)}
	l := New(3, time.Minute, WithClock(clk.Now))

	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("call %d rejected", i)
		}
		clk.Advance(10 * time.Second)
	}
	if l.Allow("a") {
		t.Fatal("fourth call within the window allowed")
	}
	if err := l.Take("a"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if !l.Allow("b") {
		t.Fatal("identities must not share a budget")
	}

	// first call was at t=0; at t=60s it leaves the window
	clk.Advance(30 * time.Second)
	if got := l.Remaining("a"); got != 1 {
		t.Fatalf("remaining = %d, want 1", got)
	}
	if !l.Allow("a") {
		t.Fatal("call after the oldest one expired rejected")
	}
	if l.Allow("a") {
		t.Fatal("window should be full again")
	}
}

func TestLimiterPrune(t *testing.T) {
	clk := &clock{t: time.Unix(1000, 0)}
	l := New(5, time.Minute, WithClock(clk.Now))

	l.Allow("old")
	clk.Advance(45 * time.Second)
	l.Allow("recent")
	clk.Advance(30 * time.Second)

	if n := l.Prune(); n != 1 {
		t.Fatalf("pruned %d identities, want 1", n)
	}
	if l.Identities() != 1 {
		t.Fatalf("identities = %d, want 1", l.Identities())
	}
	if got := l.Remaining("recent"); got != 4 {
		t.Fatalf("remaining = %d, want 4", got)
	}
}

func TestLimiterConcurrentAllow(t *testing.T) {
	l := New(50, time.Hour)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Fatalf("allowed %d calls, want 50", allowed)
	}
}

func TestLimiterReadsClockUnderLock(t *testing.T) {
	clk := &clock{t: time.Unix(1000, 0)}
	l := New(1000, time.Minute)
	var outside sync.Once
	l.now = func() time.Time {
		if l.mu.TryLock() {
			l.mu.Unlock()
			outside.Do(func() { t.Error("clock read without holding the limiter lock") })
		}
		clk.Advance(time.Millisecond)
		return clk.Now()
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Allow("k")
			l.Remaining("k")
		}()
	}
	wg.Wait()
	l.Prune()

	l.mu.Lock()
	defer l.mu.Unlock()
	hits := l.m["k"]
	for i := 1; i < len(hits); i++ {
		if hits[i].Before(hits[i-1]) {
			t.Fatalf("timestamps out of order at %d: %v before %v", i, hits[i], hits[i-1])
		}
	}
}
