package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/pkg/cache"
)

type fakeSource struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{calls: map[string]int{}, fail: map[string]error{}}
}

func (f *fakeSource) GetLatestNCandles(_ context.Context, symbol string, n int, _ domrepo.Timeframe) ([]models.PriceBar, error) {
	f.mu.Lock()
	f.calls[symbol]++
	err := f.fail[symbol]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	// newest first is not required; the use case orders bars itself
	bars := make([]models.PriceBar, n)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := 100.0
	for i := range bars {
		p += 0.05 * float64(i)
		bars[n-1-i] = models.PriceBar{
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Open:      p, High: p, Low: p, Close: p,
			Volume: 1000 + 10*float64(i),
		}
	}
	return bars, nil
}

func (f *fakeSource) Calls(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

type recMetrics struct {
	mu       sync.Mutex
	verdicts map[string]int
	limited  int
}

func (m *recMetrics) RecordVerdict(v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verdicts == nil {
		m.verdicts = map[string]int{}
	}
	m.verdicts[v]++
}
func (m *recMetrics) RecordError(string) {}
func (m *recMetrics) RecordRateLimited(string) {
	m.mu.Lock()
	m.limited++
	m.mu.Unlock()
}

func newService(src domrepo.CandleSource, limit int, met domrepo.Metrics) *ScoringService {
	memo := cache.NewMemoizer(cache.NewTieredCache(nil, cache.NewMemoryStore()), nil)
	limiter := ratelimit.New(limit, time.Minute)
	candles := NewCandlesUseCase(src, "test", limiter, memo, time.Minute, met)
	ttl := ScoringTTL{Trend: time.Minute, Composite: time.Minute, Risk: time.Minute}
	return NewScoringService(candles, memo, ttl, 2, met, nil)
}

func TestTrendScoreIsMemoized(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	svc := newService(src, 100, nil)

	first, err := svc.TrendScore(ctx, "BTCUSDT", domrepo.TF1m, 80)
	if err != nil {
		t.Fatalf("trend score: %v", err)
	}
	if first.Label != models.TrendStronglyBullish {
		t.Fatalf("label = %s, want strongly_bullish (signals %v)", first.Label, first.Signals)
	}
	second, err := svc.TrendScore(ctx, "BTCUSDT", domrepo.TF1m, 80)
	if err != nil {
		t.Fatalf("trend score: %v", err)
	}
	if src.Calls("BTCUSDT") != 1 {
		t.Fatalf("source called %d times, want 1", src.Calls("BTCUSDT"))
	}
	if first.Score != second.Score || len(first.Signals) != len(second.Signals) {
		t.Fatalf("cached result differs: %+v vs %+v", first, second)
	}
}

func TestTrendScoreValidatesParams(t *testing.T) {
	ctx := context.Background()
	svc := newService(newFakeSource(), 100, nil)

	for _, tc := range []struct {
		symbol string
		tf     domrepo.Timeframe
		n      int
	}{
		{"", domrepo.TF1m, 50},
		{"BTC", "1h", 50},
		{"BTC", domrepo.TF1m, 0},
		{"BTC", domrepo.TF1m, 5001},
	} {
		if _, err := svc.TrendScore(ctx, tc.symbol, tc.tf, tc.n); !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("%+v: expected invalid input, got %v", tc, err)
		}
	}
}

func TestCandleFetchIsRateLimited(t *testing.T) {
	ctx := context.Background()
	met := &recMetrics{}
	svc := newService(newFakeSource(), 1, met)

	if _, err := svc.TrendScore(ctx, "ETHUSDT", domrepo.TF1m, 40); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	// a different window misses the cache and needs a second fetch
	if _, err := svc.TrendScore(ctx, "ETHUSDT", domrepo.TF1m, 41); !errors.Is(err, ratelimit.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	// other symbols have their own budget
	if _, err := svc.TrendScore(ctx, "SOLUSDT", domrepo.TF1m, 40); err != nil {
		t.Fatalf("other symbol: %v", err)
	}
	if met.limited != 1 {
		t.Fatalf("rate limited count = %d, want 1", met.limited)
	}
}

func TestScoreWatchlistCollectsErrors(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.fail["BAD"] = errors.New("upstream down")
	svc := newService(src, 100, nil)

	symbols := []string{"A", "BAD", "C", "D", "E"}
	res := svc.ScoreWatchlist(ctx, symbols, domrepo.TF1m, 40)
	if len(res) != len(symbols) {
		t.Fatalf("got %d results", len(res))
	}
	for i, r := range res {
		if r.Symbol != symbols[i] {
			t.Fatalf("result %d is %s, want %s", i, r.Symbol, symbols[i])
		}
		if r.Symbol == "BAD" {
			if r.Error == "" || r.Trend != nil {
				t.Fatalf("BAD should carry an error: %+v", r)
			}
			continue
		}
		if r.Error != "" || r.Trend == nil {
			t.Fatalf("%s failed: %+v", r.Symbol, r)
		}
	}
}

func TestScoreRequest(t *testing.T) {
	ctx := context.Background()
	met := &recMetrics{}
	svc := newService(newFakeSource(), 100, met)

	bars, _ := newFakeSource().GetLatestNCandles(ctx, "X", 40, domrepo.TF1m)
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	req := models.ScoreRequest{
		Symbol:    "X",
		Timeframe: "1m",
		Bars:      bars,
		Phases: &models.PhaseInput{
			Discovery:    map[string]float64{"supply": 25},
			Confirmation: map[string]float64{"social": 30},
			Validation:   map[string]float64{"whales": 30},
		},
		Snapshot: &models.SignalSnapshot{
			Score: 80, Direction: models.DirectionLong, FundingRate: 0.05,
			LongShortRatio: 1, FearGreedIndex: 50,
		},
	}
	rep, err := svc.Score(ctx, req)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if rep.Trend == nil || rep.Composite == nil || rep.Risk == nil {
		t.Fatalf("missing sections: %+v", rep)
	}
	if rep.Composite.Total != 85 || rep.Composite.Tier != models.TierDiamond {
		t.Fatalf("composite = %+v", rep.Composite)
	}
	if rep.Risk.Verdict != models.VerdictConfirm || met.verdicts["CONFIRM"] != 1 {
		t.Fatalf("risk = %+v, verdicts %v", rep.Risk, met.verdicts)
	}

	req.Bars[3], req.Bars[4] = req.Bars[4], req.Bars[3]
	if _, err := svc.Score(ctx, req); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("unordered bars: expected invalid input, got %v", err)
	}
}

func TestTrendScoreWithoutSource(t *testing.T) {
	svc := newService(nil, 100, nil)
	if _, err := svc.TrendScore(context.Background(), "BTCUSDT", domrepo.TF1m, 50); !errors.Is(err, ErrNoCandleSource) {
		t.Fatalf("expected ErrNoCandleSource, got %v", err)
	}
}
