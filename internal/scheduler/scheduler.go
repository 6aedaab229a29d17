package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/internal/usecase"
	"SignalDesk/pkg/cache"
	"SignalDesk/pkg/logger"
)

// Watchlist is what a scoring pass covers.
type Watchlist struct {
	Symbols   []string
	Timeframe domrepo.Timeframe
	Bars      int
}

// Schedules holds the cron specs of each job.
type Schedules struct {
	Scoring string
	Prune   string
	Sweep   string
}

// Scheduler runs watchlist scoring and housekeeping on cron schedules.
type Scheduler struct {
	cron      *cron.Cron
	scoring   *usecase.ScoringService
	limiter   *ratelimit.Limiter
	cache     *cache.TieredCache
	watchlist Watchlist
	sink      domrepo.ScoreSink
	log       *logger.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewScheduler(scoring *usecase.ScoringService, limiter *ratelimit.Limiter, c *cache.TieredCache, wl Watchlist, log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      cron.New(),
		scoring:   scoring,
		limiter:   limiter,
		cache:     c,
		watchlist: wl,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetSink persists every successful scoring result to sink.
func (s *Scheduler) SetSink(sink domrepo.ScoreSink) { s.sink = sink }

// RegisterAll registers the scoring, limiter prune and cache sweep jobs. An
// empty Scoring schedule leaves only the housekeeping jobs.
func (s *Scheduler) RegisterAll(sc Schedules) error {
	if sc.Scoring != "" {
		if _, err := s.cron.AddFunc(sc.Scoring, func() { s.RunScoringNow() }); err != nil {
			return fmt.Errorf("register scoring job: %w", err)
		}
	}
	if _, err := s.cron.AddFunc(sc.Prune, func() { s.PruneLimiter() }); err != nil {
		return fmt.Errorf("register prune job: %w", err)
	}
	if _, err := s.cron.AddFunc(sc.Sweep, func() { s.SweepCache() }); err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", logger.Int("jobs", len(s.cron.Entries())))
}

// Stop cancels in-flight passes and waits for running jobs.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunScoringNow scores the watchlist once and logs every result under a
// fresh run id.
func (s *Scheduler) RunScoringNow() []models.WatchlistResult {
	runID := uuid.NewString()
	l := s.log.With(logger.String("run_id", runID))
	start := time.Now()

	results := s.scoring.ScoreWatchlist(s.ctx, s.watchlist.Symbols, s.watchlist.Timeframe, s.watchlist.Bars)
	failed := 0
	records := make([]models.ScoreRecord, 0, len(results))
	for _, r := range results {
		if r.Error != "" {
			failed++
			continue
		}
		records = append(records, models.ScoreRecord{
			RunID:      runID,
			Symbol:     r.Symbol,
			Timeframe:  string(s.watchlist.Timeframe),
			ScoredAt:   start,
			Score:      r.Trend.Score,
			Label:      r.Trend.Label,
			Confidence: r.Trend.Confidence,
		})
		l.Info("trend scored",
			logger.String("symbol", r.Symbol),
			logger.Float64("score", r.Trend.Score),
			logger.String("label", string(r.Trend.Label)),
			logger.String("confidence", string(r.Trend.Confidence)),
		)
	}
	if s.sink != nil && len(records) > 0 {
		if err := s.sink.StoreScores(s.ctx, records); err != nil {
			l.Error("store scores failed", logger.Error(err))
		}
	}
	l.Info("scoring pass done",
		logger.Int("symbols", len(results)),
		logger.Int("failed", failed),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return results
}

// PruneLimiter drops idle rate limiter identities.
func (s *Scheduler) PruneLimiter() int {
	n := s.limiter.Prune()
	if n > 0 {
		s.log.Debug("rate limiter pruned", logger.Int("identities", n))
	}
	return n
}

// SweepCache reclaims expired local cache entries.
func (s *Scheduler) SweepCache() int {
	n := s.cache.Local().Sweep()
	if n > 0 {
		s.log.Debug("local cache swept", logger.Int("entries", n))
	}
	return n
}
