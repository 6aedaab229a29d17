package models

import "time"

// TrendLabel is the banded reading of a trend score.
type TrendLabel string

const (
	TrendStronglyBullish TrendLabel = "strongly_bullish"
	TrendBullish         TrendLabel = "bullish"
	TrendNeutral         TrendLabel = "neutral"
	TrendBearish         TrendLabel = "bearish"
	TrendStronglyBearish TrendLabel = "strongly_bearish"
)

// Confidence grades how far a trend score sits from neutral.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// TrendScore is the aggregated 0-100 trend reading for one series.
// Signals maps indicator name to a description of the state it contributed.
type TrendScore struct {
	Score      float64           `json:"score"`
	Label      TrendLabel        `json:"label"`
	Confidence Confidence        `json:"confidence"`
	Signals    map[string]string `json:"signals"`
}

// NeutralTrendScore is returned when there is not enough history to score.
func NeutralTrendScore() TrendScore {
	return TrendScore{
		Score:      50,
		Label:      TrendNeutral,
		Confidence: ConfidenceLow,
		Signals:    map[string]string{},
	}
}

// ScoreRecord is one persisted watchlist trend result.
type ScoreRecord struct {
	RunID      string     `json:"run_id"`
	Symbol     string     `json:"symbol"`
	Timeframe  string     `json:"timeframe"`
	ScoredAt   time.Time  `json:"scored_at"`
	Score      float64    `json:"score"`
	Label      TrendLabel `json:"label"`
	Confidence Confidence `json:"confidence"`
}
