package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SignalDesk/internal/domain/models"
	pkgch "SignalDesk/pkg/clickhouse"
	applogger "SignalDesk/pkg/logger"
)

const scoreInsertChunk = 2000

// CHScoreSink implements ScoreSink for ClickHouse.
type CHScoreSink struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHScoreSink(ch *pkgch.Client, table string) *CHScoreSink {
	return &CHScoreSink{db: ch.DB(), table: table, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHScoreSink) SetLogger(l *applogger.Logger) { s.l = l }

// Schema returns the DDL of the results table.
func (s *CHScoreSink) Schema() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id String,
	symbol LowCardinality(String),
	tf LowCardinality(String),
	ts DateTime64(3),
	score Float64,
	label LowCardinality(String),
	confidence LowCardinality(String)
) ENGINE = MergeTree ORDER BY (symbol, ts)`, s.table)
}

// StoreScores inserts records with multi-row VALUES in chunks. Records
// without a symbol are skipped.
func (s *CHScoreSink) StoreScores(ctx context.Context, records []models.ScoreRecord) error {
	start := time.Now()
	stored := 0
	for lo := 0; lo < len(records); lo += scoreInsertChunk {
		hi := min(lo+scoreInsertChunk, len(records))
		q, args := scoreInsert(s.table, records[lo:hi])
		if q == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse store_scores error", applogger.Int("rows", len(args)/scoreColumns), applogger.Error(err))
			return fmt.Errorf("store scores: %w", err)
		}
		stored += len(args) / scoreColumns
	}
	s.l.Debug("clickhouse store_scores ok",
		applogger.Int("rows", stored),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHScoreSink) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const scoreColumns = 7

func scoreInsert(table string, records []models.ScoreRecord) (string, []interface{}) {
	values := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*scoreColumns)
	for _, r := range records {
		if r.Symbol == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			r.RunID,
			r.Symbol,
			r.Timeframe,
			r.ScoredAt,
			r.Score,
			string(r.Label),
			string(r.Confidence),
		)
	}
	if len(values) == 0 {
		return "", nil
	}
	q := fmt.Sprintf("INSERT INTO %s (run_id, symbol, tf, ts, score, label, confidence) VALUES %s", table, strings.Join(values, ","))
	return q, args
}
