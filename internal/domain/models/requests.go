package models

// Request and report shapes shared by the ops API and the score command.

type CacheInvalidateRequest struct {
	Pattern string `query:"pattern" json:"pattern" validate:"required,max=256"`
}

// PhaseInput carries the sub-metric points of each discovery phase.
type PhaseInput struct {
	Discovery    map[string]float64 `json:"discovery"`
	Confirmation map[string]float64 `json:"confirmation"`
	Validation   map[string]float64 `json:"validation"`
}

// ScoreRequest is an offline scoring document. Every section is optional.
type ScoreRequest struct {
	Symbol    string          `json:"symbol" default:"UNKNOWN"`
	Timeframe string          `json:"timeframe" default:"1m" validate:"oneof=1s 1m 5m"`
	Bars      []PriceBar      `json:"bars"`
	Snapshot  *SignalSnapshot `json:"snapshot"`
	Phases    *PhaseInput     `json:"phases"`
}

// ScoreReport is the result of a ScoreRequest.
type ScoreReport struct {
	Symbol    string          `json:"symbol"`
	Trend     *TrendScore     `json:"trend,omitempty"`
	Composite *CompositeScore `json:"composite,omitempty"`
	Risk      *RiskAssessment `json:"risk,omitempty"`
}

// WatchlistResult is the outcome of scoring one symbol in a batch.
type WatchlistResult struct {
	Symbol string      `json:"symbol"`
	Trend  *TrendScore `json:"trend,omitempty"`
	Error  string      `json:"error,omitempty"`
}
