package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type result struct {
	Score  float64           `json:"score"`
	Labels map[string]string `json:"labels"`
}

func TestOperationKeyIsDeterministic(t *testing.T) {
	a, err := OperationKey("trend", "BTC", 100, map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	b, _ := OperationKey("trend", "BTC", 100, map[string]int{"a": 1, "b": 2})
	if a != b {
		t.Fatalf("keys differ for equal args: %s vs %s", a, b)
	}
	c, _ := OperationKey("trend", "ETH", 100)
	if a == c {
		t.Fatal("different args produced the same key")
	}
	if a[:6] != "trend:" || len(a) != len("trend:")+argHashLen {
		t.Fatalf("unexpected key shape %q", a)
	}
}

func TestMemoizeCachesResults(t *testing.T) {
	ctx := context.Background()
	m := NewMemoizer(NewTieredCache(nil, nil), nil)

	var calls int
	fn := func(context.Context) (result, error) {
		calls++
		return result{Score: 62.5, Labels: map[string]string{"rsi": "58.0"}}, nil
	}

	first, err := Memoize(ctx, m, "trend", time.Minute, fn, "BTC")
	if err != nil {
		t.Fatalf("memoize: %v", err)
	}
	second, err := Memoize(ctx, m, "trend", time.Minute, fn, "BTC")
	if err != nil {
		t.Fatalf("memoize: %v", err)
	}
	if calls != 1 {
		t.Fatalf("fn called %d times, want 1", calls)
	}
	if first.Score != second.Score || second.Labels["rsi"] != "58.0" {
		t.Fatalf("cached result differs: %+v vs %+v", first, second)
	}

	_, _ = Memoize(ctx, m, "trend", time.Minute, fn, "ETH")
	if calls != 2 {
		t.Fatalf("different args should recompute, calls=%d", calls)
	}

	met := m.Cache().Metrics(ctx)
	if met.Hits != 1 || met.Misses != 2 || met.AvgLatency < 0 {
		t.Fatalf("metrics = %+v", met)
	}

	if n, _ := m.Invalidate(ctx, "trend"); n != 2 {
		t.Fatalf("invalidated %d, want 2", n)
	}
	_, _ = Memoize(ctx, m, "trend", time.Minute, fn, "BTC")
	if calls != 3 {
		t.Fatalf("invalidated entry should recompute, calls=%d", calls)
	}
}

func TestMemoizeDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	m := NewMemoizer(NewTieredCache(nil, nil), nil)
	boom := errors.New("boom")

	var calls int
	fn := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 7, nil
	}

	if _, err := Memoize(ctx, m, "op", time.Minute, fn); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	v, err := Memoize(ctx, m, "op", time.Minute, fn)
	if err != nil || v != 7 {
		t.Fatalf("second call = %d, %v", v, err)
	}
}

func TestMemoizeCollapsesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	m := NewMemoizer(NewTieredCache(nil, nil), nil)

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Memoize(ctx, m, "slow", time.Minute, fn, "x")
			if err != nil {
				t.Errorf("memoize: %v", err)
			}
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("fn ran %d times, want 1", n)
	}
	for i, v := range results {
		if v != 42 {
			t.Fatalf("result[%d] = %d", i, v)
		}
	}
}
