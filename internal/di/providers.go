package di

import (
	"context"
	"fmt"
	"time"

	"SignalDesk/internal/domain/repository"
	"SignalDesk/internal/handler/api"
	internalrepo "SignalDesk/internal/repository"
	"SignalDesk/internal/scheduler"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/internal/usecase"
	"SignalDesk/pkg/cache"
	pkgch "SignalDesk/pkg/clickhouse"
	"SignalDesk/pkg/config"
	xhttp "SignalDesk/pkg/http"
	applogger "SignalDesk/pkg/logger"
	"SignalDesk/pkg/metrics"
	"SignalDesk/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const candleSourceName = "clickhouse"

// ProvideLogger builds the process logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideRecorder creates the Prometheus metrics recorder.
func ProvideRecorder(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.New(reg)
}

// ProvideMetrics exposes the recorder to the use cases.
func ProvideMetrics(r *metrics.Recorder) repository.Metrics {
	return r
}

// ProvideTieredCache builds the tiered cache. With Redis disabled the cache
// is local only. An unreachable Redis at startup is not fatal: the cache
// starts on its local tier and retries after cache.retry_after.
func ProvideTieredCache(cfg *config.Config, log *applogger.Logger, rec *metrics.Recorder) (*cache.TieredCache, func(), error) {
	local := cache.NewMemoryStore(cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxEntries))
	opts := []cache.TieredOption{
		cache.WithRetryAfter(cfg.Cache.RetryAfter),
		cache.WithLogger(log),
		cache.WithObserver(rec),
	}

	rc := cfg.Cache.Redis
	if !rc.Enabled {
		log.Info("cache: local only", applogger.Int("max_entries", cfg.Cache.Memory.MaxEntries))
		return cache.NewTieredCache(nil, local, opts...), func() {}, nil
	}

	store := cache.NewRedisStore(
		cache.WithRedisAddr(rc.Addr),
		cache.WithRedisPassword(rc.Password),
		cache.WithRedisDB(rc.DB),
		cache.WithRedisPrefix(rc.Prefix),
		cache.WithRedisDialTimeout(rc.DialTimeout),
	)
	ctx, cancel := context.WithTimeout(context.Background(), rc.DialTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		log.Warn("cache: redis unreachable at startup", applogger.String("addr", rc.Addr), applogger.Error(err))
	} else {
		log.Info("cache: redis connected", applogger.String("addr", rc.Addr), applogger.String("prefix", rc.Prefix))
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Warn("redis close error", applogger.Error(err))
		}
	}
	return cache.NewTieredCache(store, local, opts...), cleanup, nil
}

// ProvideMemoizer wraps the cache for result memoization.
func ProvideMemoizer(c *cache.TieredCache, log *applogger.Logger) *cache.Memoizer {
	return cache.NewMemoizer(c, log)
}

// ProvideLimiter creates the sliding-window rate limiter.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Limit, cfg.RateLimit.Window)
}

// ProvideClickHouseClient connects to ClickHouse. It returns a nil client
// when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config, log *applogger.Logger) (*pkgch.Client, func(), error) {
	cc := cfg.ClickHouse
	if !cc.Enabled {
		log.Info("clickhouse disabled: scheduled scoring is off")
		return nil, func() {}, nil
	}

	client, err := pkgch.NewClient(context.Background(),
		pkgch.WithHost(cc.Host),
		pkgch.WithPort(cc.Port),
		pkgch.WithDatabase(cc.Database),
		pkgch.WithCredentials(cc.User, cc.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cc.UseHTTP),
		pkgch.WithTimeouts(cc.DialTimeout, cc.ReadTimeout),
		pkgch.WithMaxExecutionTime(cc.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	log.Info("clickhouse connected", applogger.String("host", cc.Host), applogger.String("db", cc.Database))

	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideCandleSource returns the ClickHouse candle source, or nil without
// a client.
func ProvideCandleSource(cfg *config.Config, ch *pkgch.Client, log *applogger.Logger) repository.CandleSource {
	if ch == nil {
		return nil
	}
	src := internalrepo.NewCHCandleSource(ch, cfg.ClickHouse.Database+"."+cfg.ClickHouse.CandleTable)
	src.SetLogger(log)
	return src
}

// ProvideScoreSink returns the ClickHouse results sink when a score table is
// configured, creating the table if needed.
func ProvideScoreSink(cfg *config.Config, ch *pkgch.Client, log *applogger.Logger) (repository.ScoreSink, error) {
	if ch == nil || cfg.ClickHouse.ScoreTable == "" {
		return nil, nil
	}
	sink := internalrepo.NewCHScoreSink(ch, cfg.ClickHouse.Database+"."+cfg.ClickHouse.ScoreTable)
	sink.SetLogger(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := ch.DB().ExecContext(ctx, sink.Schema()); err != nil {
		return nil, fmt.Errorf("clickhouse score table: %w", err)
	}
	return sink, nil
}

// ProvideCandlesUseCase creates the memoized, rate limited candle fetcher.
func ProvideCandlesUseCase(cfg *config.Config, src repository.CandleSource, limiter *ratelimit.Limiter, memo *cache.Memoizer, m repository.Metrics) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(src, candleSourceName, limiter, memo, cfg.Cache.TTL.Candles, m)
}

// ProvideScoringService creates the scoring entry point.
func ProvideScoringService(cfg *config.Config, candles *usecase.CandlesUseCase, memo *cache.Memoizer, m repository.Metrics, log *applogger.Logger) *usecase.ScoringService {
	ttl := usecase.ScoringTTL{
		Trend:     cfg.Cache.TTL.Trend,
		Composite: cfg.Cache.TTL.Composite,
		Risk:      cfg.Cache.TTL.Risk,
	}
	return usecase.NewScoringService(candles, memo, ttl, cfg.Scoring.Workers, m, log)
}

// ProvideScheduler creates the cron scheduler with its jobs registered.
func ProvideScheduler(
	cfg *config.Config,
	svc *usecase.ScoringService,
	limiter *ratelimit.Limiter,
	c *cache.TieredCache,
	src repository.CandleSource,
	sink repository.ScoreSink,
	log *applogger.Logger,
) (*scheduler.Scheduler, error) {
	tf, err := repository.ParseTimeframe(cfg.Scoring.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("scoring timeframe: %w", err)
	}
	wl := scheduler.Watchlist{
		Symbols:   cfg.Scoring.Symbols,
		Timeframe: tf,
		Bars:      cfg.Scoring.Bars,
	}
	s := scheduler.NewScheduler(svc, limiter, c, wl, log)
	if sink != nil {
		s.SetSink(sink)
	}

	sc := scheduler.Schedules{
		Scoring: cfg.Scoring.Schedule,
		Prune:   cfg.RateLimit.PruneSchedule,
		Sweep:   cfg.Cache.SweepSchedule,
	}
	if src == nil {
		sc.Scoring = ""
	}
	if err := s.RegisterAll(sc); err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	return s, nil
}

// ProvideOpsHandler creates the health and cache admin routes.
func ProvideOpsHandler(log *applogger.Logger, c *cache.TieredCache, ch *pkgch.Client) *api.OpsEchoHandler {
	h := api.NewOpsEchoHandler(log, c)
	if ch != nil {
		h.AddCheck("clickhouse", ch)
	}
	return h
}

// ProvideHTTPServer creates the ops HTTP server.
func ProvideHTTPServer(cfg *config.Config, h *api.OpsEchoHandler, reg *prometheus.Registry, limiter *ratelimit.Limiter, log *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h, log,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(cfg.Metrics.Path, reg, reg),
		xhttp.WithRateLimit(limiter),
	)
}

// ProvideApp creates the application.
func ProvideApp(log *applogger.Logger, srv *xhttp.Server, sched *scheduler.Scheduler) *server.App {
	return server.New(log, srv, sched)
}

// ProvideLocalCache builds a local-only cache for one-shot commands.
func ProvideLocalCache(cfg *config.Config, log *applogger.Logger) *cache.TieredCache {
	local := cache.NewMemoryStore(cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxEntries))
	return cache.NewTieredCache(nil, local, cache.WithLogger(log))
}

// ProvideOfflineScoringService creates a scoring service with no candle
// source, for scoring caller-supplied documents.
func ProvideOfflineScoringService(cfg *config.Config, memo *cache.Memoizer, log *applogger.Logger) *usecase.ScoringService {
	ttl := usecase.ScoringTTL{
		Trend:     cfg.Cache.TTL.Trend,
		Composite: cfg.Cache.TTL.Composite,
		Risk:      cfg.Cache.TTL.Risk,
	}
	return usecase.NewScoringService(nil, memo, ttl, cfg.Scoring.Workers, nil, log)
}
