package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/services/discovery"
	"SignalDesk/internal/services/features"
	"SignalDesk/internal/services/risk"
	"SignalDesk/internal/services/trend"
	"SignalDesk/pkg/cache"
	"SignalDesk/pkg/logger"
)

const (
	opTrendScore = "trend_score"
	opComposite  = "composite"
	opRisk       = "risk_assessment"
)

// ScoringTTL holds the cache lifetime of each result kind.
type ScoringTTL struct {
	Trend     time.Duration
	Composite time.Duration
	Risk      time.Duration
}

// ScoringService is the process-wide entry point to the scoring core. It is
// built once at startup and passed to whoever needs it.
type ScoringService struct {
	candles *CandlesUseCase
	memo    *cache.Memoizer
	ttl     ScoringTTL
	workers int
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewScoringService(candles *CandlesUseCase, memo *cache.Memoizer, ttl ScoringTTL, workers int, metrics domrepo.Metrics, log *logger.Logger) *ScoringService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ScoringService{
		candles: candles,
		memo:    memo,
		ttl:     ttl,
		workers: max(workers, 1),
		metrics: metrics,
		log:     log,
	}
}

// TrendScore fetches the latest n candles of symbol and scores them.
func (s *ScoringService) TrendScore(ctx context.Context, symbol string, tf domrepo.Timeframe, n int) (models.TrendScore, error) {
	series, err := s.candles.LatestSeries(ctx, GetSeriesParams{Symbol: symbol, N: n, Timeframe: tf})
	if err != nil {
		return models.TrendScore{}, err
	}
	return s.TrendScoreSeries(ctx, series)
}

// TrendScoreSeries scores a caller-supplied series. Volumes are used when the
// bars carry any.
func (s *ScoringService) TrendScoreSeries(ctx context.Context, series models.PriceSeries) (models.TrendScore, error) {
	if err := features.ValidateSeries(series); err != nil {
		return models.TrendScore{}, fmt.Errorf("trend score: %w", err)
	}
	return cache.Memoize(ctx, s.memo, opTrendScore, s.ttl.Trend, func(context.Context) (models.TrendScore, error) {
		return trend.Score(series, features.VolumesIfPresent(series))
	}, series.Bars)
}

// Composite combines three phase scores.
func (s *ScoringService) Composite(ctx context.Context, disc, conf, valid models.PhaseScore) (models.CompositeScore, error) {
	return cache.Memoize(ctx, s.memo, opComposite, s.ttl.Composite, func(context.Context) (models.CompositeScore, error) {
		return discovery.Compose(disc, conf, valid)
	}, disc, conf, valid)
}

// CompositeFromInput builds the phases from raw sub-metric points and composes them.
func (s *ScoringService) CompositeFromInput(ctx context.Context, in models.PhaseInput) (models.CompositeScore, error) {
	return s.Composite(ctx,
		discovery.NewPhase(models.PhaseDiscovery, discovery.MaxDiscovery, in.Discovery),
		discovery.NewPhase(models.PhaseConfirmation, discovery.MaxConfirmation, in.Confirmation),
		discovery.NewPhase(models.PhaseValidation, discovery.MaxValidation, in.Validation),
	)
}

// Assess classifies a signal snapshot.
func (s *ScoringService) Assess(ctx context.Context, snap models.SignalSnapshot) (models.RiskAssessment, error) {
	ra, err := cache.Memoize(ctx, s.memo, opRisk, s.ttl.Risk, func(context.Context) (models.RiskAssessment, error) {
		return risk.Assess(snap)
	}, snap)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	s.metrics.RecordVerdict(string(ra.Verdict))
	return ra, nil
}

// Score evaluates every section present in req.
func (s *ScoringService) Score(ctx context.Context, req models.ScoreRequest) (models.ScoreReport, error) {
	rep := models.ScoreReport{Symbol: req.Symbol}
	if len(req.Bars) > 0 {
		series := models.PriceSeries{Symbol: req.Symbol, Timeframe: req.Timeframe, Bars: req.Bars}
		ts, err := s.TrendScoreSeries(ctx, series)
		if err != nil {
			return rep, err
		}
		rep.Trend = &ts
	}
	if req.Phases != nil {
		cs, err := s.CompositeFromInput(ctx, *req.Phases)
		if err != nil {
			return rep, err
		}
		rep.Composite = &cs
	}
	if req.Snapshot != nil {
		ra, err := s.Assess(ctx, *req.Snapshot)
		if err != nil {
			return rep, err
		}
		rep.Risk = &ra
	}
	return rep, nil
}

// ScoreWatchlist scores symbols in parallel with at most workers in flight.
// Results keep the input order; a failing symbol carries its error.
func (s *ScoringService) ScoreWatchlist(ctx context.Context, symbols []string, tf domrepo.Timeframe, n int) []models.WatchlistResult {
	out := make([]models.WatchlistResult, len(symbols))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				out[i] = models.WatchlistResult{Symbol: sym, Error: ctx.Err().Error()}
				return
			}

			ts, err := s.TrendScore(ctx, sym, tf, n)
			if err != nil {
				s.metrics.RecordError("trend_score")
				s.log.Warn("watchlist scoring failed", logger.String("symbol", sym), logger.Error(err))
				out[i] = models.WatchlistResult{Symbol: sym, Error: err.Error()}
				return
			}
			out[i] = models.WatchlistResult{Symbol: sym, Trend: &ts}
		}(i, sym)
	}
	wg.Wait()
	return out
}

// Memoizer exposes the result cache for ops endpoints.
func (s *ScoringService) Memoizer() *cache.Memoizer {
	return s.memo
}
