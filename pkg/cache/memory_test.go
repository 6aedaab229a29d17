package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	ms := NewMemoryStore(WithMemoryClock(clk.Now))

	if err := ms.Put(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := ms.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("immediate get = %q, %v", got, err)
	}

	clk.Advance(999 * time.Millisecond)
	if _, err := ms.Get(ctx, "k"); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	clk.Advance(time.Millisecond)
	if _, err := ms.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after ttl, got %v", err)
	}
	if ms.Len() != 0 {
		t.Fatalf("expired entry not reclaimed on read, len=%d", ms.Len())
	}
}

func TestMemoryStoreRejectsNonPositiveTTL(t *testing.T) {
	ms := NewMemoryStore()
	if err := ms.Put(context.Background(), "k", []byte("v"), 0); !errors.Is(err, ErrInvalidTTL) {
		t.Fatalf("expected ErrInvalidTTL, got %v", err)
	}
}

func TestMemoryStoreInvalidate(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	ms := NewMemoryStore(WithMemoryClock(clk.Now))

	for _, k := range []string{"trend:a", "trend:b", "risk:a"} {
		_ = ms.Put(ctx, k, []byte(k), time.Minute)
	}
	_ = ms.Put(ctx, "trend:old", []byte("x"), time.Second)
	clk.Advance(2 * time.Second)

	n, err := ms.Invalidate(ctx, "trend:*")
	if err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed %d live entries, want 2", n)
	}
	if ms.Len() != 1 {
		t.Fatalf("len = %d, want 1 (expired entry reclaimed)", ms.Len())
	}

	n, _ = ms.Invalidate(ctx, MatchAll)
	if n != 1 || ms.Len() != 0 {
		t.Fatalf("match-all removed %d, len %d", n, ms.Len())
	}

	if _, err := ms.Invalidate(ctx, "trend:["); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	ms := NewMemoryStore(WithMemoryClock(clk.Now), WithMemoryMaxSize(2))

	_ = ms.Put(ctx, "a", []byte("1"), time.Hour)
	clk.Advance(time.Second)
	_ = ms.Put(ctx, "b", []byte("2"), time.Hour)
	clk.Advance(time.Second)
	_, _ = ms.Get(ctx, "a")
	clk.Advance(time.Second)
	_ = ms.Put(ctx, "c", []byte("3"), time.Hour)

	if _, err := ms.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("b should have been evicted, got %v", err)
	}
	for _, k := range []string{"a", "c"} {
		if _, err := ms.Get(ctx, k); err != nil {
			t.Fatalf("%s missing: %v", k, err)
		}
	}
}

func TestMemoryStoreSweepAndStats(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	ms := NewMemoryStore(WithMemoryClock(clk.Now))

	_ = ms.Put(ctx, "short", []byte("12345"), time.Second)
	_ = ms.Put(ctx, "long", []byte("123"), time.Hour)

	st, _ := ms.Stats(ctx)
	if st.Entries != 2 || st.Bytes != int64(len("short")+5+len("long")+3) {
		t.Fatalf("stats = %+v", st)
	}

	clk.Advance(time.Minute)
	if n := ms.Sweep(); n != 1 {
		t.Fatalf("sweep removed %d, want 1", n)
	}
	st, _ = ms.Stats(ctx)
	if st.Entries != 1 || st.Bytes != 7 {
		t.Fatalf("stats after sweep = %+v", st)
	}
}

func TestMemoryStoreCopiesValue(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	buf := []byte("abc")
	_ = ms.Put(ctx, "k", buf, time.Minute)
	buf[0] = 'x'
	got, _ := ms.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller buffer: %q", got)
	}
}
