package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/internal/services/features"
	"SignalDesk/pkg/cache"
)

const (
	opCandles = "candles"
	maxBars   = 5000
)

// ErrNoCandleSource is returned by LatestSeries when the process runs
// without a candle store.
var ErrNoCandleSource = errors.New("no candle source configured")

// CandlesUseCase fetches recent candles as a validated series. Fetches are
// memoized and rate limited per source:symbol.
type CandlesUseCase struct {
	source  domrepo.CandleSource
	name    string
	limiter *ratelimit.Limiter
	memo    *cache.Memoizer
	ttl     time.Duration
	metrics domrepo.Metrics
}

func NewCandlesUseCase(source domrepo.CandleSource, name string, limiter *ratelimit.Limiter, memo *cache.Memoizer, ttl time.Duration, metrics domrepo.Metrics) *CandlesUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &CandlesUseCase{source: source, name: name, limiter: limiter, memo: memo, ttl: ttl, metrics: metrics}
}

type GetSeriesParams struct {
	Symbol    string
	N         int
	Timeframe domrepo.Timeframe
}

func (uc *CandlesUseCase) LatestSeries(ctx context.Context, p GetSeriesParams) (models.PriceSeries, error) {
	if uc == nil || uc.source == nil {
		return models.PriceSeries{}, ErrNoCandleSource
	}
	if p.Symbol == "" {
		return models.PriceSeries{}, fmt.Errorf("symbol required: %w", models.ErrInvalidInput)
	}
	if p.N <= 0 || p.N > maxBars {
		return models.PriceSeries{}, fmt.Errorf("bars must be in [1, %d], got %d: %w", maxBars, p.N, models.ErrInvalidInput)
	}
	if !p.Timeframe.Valid() {
		return models.PriceSeries{}, fmt.Errorf("unsupported timeframe %q: %w", p.Timeframe, models.ErrInvalidInput)
	}

	bars, err := cache.Memoize(ctx, uc.memo, opCandles, uc.ttl, func(ctx context.Context) ([]models.PriceBar, error) {
		identity := uc.name + ":" + p.Symbol
		if err := uc.limiter.Take(identity); err != nil {
			uc.metrics.RecordRateLimited(opCandles)
			return nil, fmt.Errorf("fetch %s: %w", identity, err)
		}
		bars, err := uc.source.GetLatestNCandles(ctx, p.Symbol, p.N, p.Timeframe)
		if err != nil {
			uc.metrics.RecordError("candle_fetch")
			return nil, fmt.Errorf("get candles: %w", err)
		}
		return bars, nil
	}, uc.name, p.Symbol, p.N, p.Timeframe)
	if err != nil {
		return models.PriceSeries{}, err
	}

	series := features.SeriesFromCandles(p.Symbol, string(p.Timeframe), bars)
	if err := features.ValidateSeries(series); err != nil {
		return models.PriceSeries{}, fmt.Errorf("%s: %w", p.Symbol, err)
	}
	return series, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordVerdict(string)     {}
func (nopMetrics) RecordError(string)       {}
func (nopMetrics) RecordRateLimited(string) {}
