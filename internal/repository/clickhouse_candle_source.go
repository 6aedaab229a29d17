package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	pkgch "SignalDesk/pkg/clickhouse"
	applogger "SignalDesk/pkg/logger"
)

// CHCandleSource implements CandleSource backed by ClickHouse. Candles live in
// one table per stored resolution named <table>_1s and <table>_1m; 5m candles
// are folded from the 1m table at query time.
type CHCandleSource struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHCandleSource(ch *pkgch.Client, table string) *CHCandleSource {
	return &CHCandleSource{db: ch.DB(), table: table, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHCandleSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHCandleSource) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.PriceBar, error) {
	start := time.Now()
	q, err := latestCandlesQuery(s.table, tf)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		s.l.Error("clickhouse latest_candles query error",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("limit", n),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	defer rows.Close()

	bars := make([]models.PriceBar, 0, n)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.l.Error("clickhouse latest_candles scan error",
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	reverse(bars)
	s.l.Debug("clickhouse latest_candles ok",
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return bars, nil
}

// latestCandlesQuery returns the newest-first query for tf. Parameters are
// symbol and limit.
func latestCandlesQuery(table string, tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TF1s, domrepo.TF1m:
		return fmt.Sprintf(`
        SELECT bucket, open, high, low, close, vol
        FROM %s_%s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `, table, tf), nil
	case domrepo.TF5m:
		return fmt.Sprintf(`
        SELECT toStartOfFiveMinutes(bucket) AS b,
               argMin(open, bucket), max(high), min(low), argMax(close, bucket), sum(vol)
        FROM %s_1m
        WHERE symbol = ?
        GROUP BY b
        ORDER BY b DESC
        LIMIT ?
    `, table), nil
	default:
		return "", fmt.Errorf("unsupported timeframe %q: %w", tf, models.ErrInvalidInput)
	}
}

func reverse(bars []models.PriceBar) {
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
}
