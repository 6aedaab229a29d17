package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.CacheHit("local")
	r.CacheHit("local")
	r.CacheMiss()
	r.CacheBackendError("get")
	r.CacheDegraded(true)
	r.OperationLatency("trend_score", 3*time.Millisecond)
	r.RecordVerdict("CONFIRM")
	r.RecordRateLimited("candles")

	if v := testutil.ToFloat64(r.cacheRequests.WithLabelValues("hit", "local")); v != 2 {
		t.Fatalf("hits = %v, want 2", v)
	}
	if v := testutil.ToFloat64(r.cacheRequests.WithLabelValues("miss", "")); v != 1 {
		t.Fatalf("misses = %v, want 1", v)
	}
	if v := testutil.ToFloat64(r.degraded); v != 1 {
		t.Fatalf("degraded = %v, want 1", v)
	}
	r.CacheDegraded(false)
	if v := testutil.ToFloat64(r.degraded); v != 0 {
		t.Fatalf("degraded = %v, want 0", v)
	}
	if n := testutil.CollectAndCount(r.latency); n != 1 {
		t.Fatalf("latency series = %d, want 1", n)
	}
}

func TestRecordersUseSeparateRegistries(t *testing.T) {
	// registering twice on the same registry would panic
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
