//go:build wireinject
// +build wireinject

package di

import (
	"SignalDesk/internal/usecase"
	"SignalDesk/pkg/config"
	"SignalDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies of the serve command.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideRecorder,
		ProvideMetrics,

		// Infrastructure
		ProvideTieredCache,
		ProvideMemoizer,
		ProvideLimiter,
		ProvideClickHouseClient,

		// Repositories
		ProvideCandleSource,
		ProvideScoreSink,

		// Use cases
		ProvideCandlesUseCase,
		ProvideScoringService,

		// Application server
		ProvideScheduler,
		ProvideOpsHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeScorer wires a scoring service for offline use.
func InitializeScorer(cfg *config.Config) (*usecase.ScoringService, error) {
	wire.Build(
		ProvideLogger,
		ProvideLocalCache,
		ProvideMemoizer,
		ProvideOfflineScoringService,
	)
	return nil, nil
}
