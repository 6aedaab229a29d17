package repository

import (
	"context"

	"SignalDesk/internal/domain/models"
)

// CandleSource provides read-only access to recent candles, oldest first.
type CandleSource interface {
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.PriceBar, error)
}

// Metrics records scoring outcomes.
type Metrics interface {
	RecordVerdict(verdict string)
	RecordError(kind string)
	RecordRateLimited(scope string)
}

// ScoreSink persists watchlist scoring results.
type ScoreSink interface {
	StoreScores(ctx context.Context, records []models.ScoreRecord) error
}
