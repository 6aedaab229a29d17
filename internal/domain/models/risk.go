package models

// Direction of the signal being assessed.
type Direction string

const (
	DirectionLong    Direction = "LONG"
	DirectionShort   Direction = "SHORT"
	DirectionNeutral Direction = "NEUTRAL"
)

// OITrend describes the open interest drift.
type OITrend string

const (
	OIRising  OITrend = "rising"
	OIFalling OITrend = "falling"
	OIFlat    OITrend = "flat"
)

// Bias is a directional lean such as the smart-money position.
type Bias string

const (
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasNeutral Bias = "neutral"
)

// SignalSnapshot is the input of the risk classifier. FundingRate is in
// percent (0.01 means 0.01%). LiquidationImbalance is in [-1, 1]; positive
// values mean short liquidations dominate.
type SignalSnapshot struct {
	Score                float64   `json:"score" validate:"gte=0,lte=100"`
	Direction            Direction `json:"direction" validate:"required,oneof=LONG SHORT NEUTRAL"`
	FundingRate          float64   `json:"funding_rate"`
	LongShortRatio       float64   `json:"long_short_ratio" validate:"gte=0"`
	LiquidationImbalance float64   `json:"liquidation_imbalance" validate:"gte=-1,lte=1"`
	OpenInterestTrend    OITrend   `json:"open_interest_trend" validate:"omitempty,oneof=rising falling flat"`
	SmartMoneyBias       Bias      `json:"smart_money_bias" validate:"omitempty,oneof=bullish bearish neutral"`
	FearGreedIndex       float64   `json:"fear_greed_index" validate:"gte=0,lte=100"`
}

// LongPct converts the long/short account ratio into the share of long
// accounts. A missing ratio reads as balanced.
func (s SignalSnapshot) LongPct() float64 {
	if s.LongShortRatio <= 0 {
		return 50
	}
	return 100 * s.LongShortRatio / (1 + s.LongShortRatio)
}

// RiskMode governs position sizing.
type RiskMode string

const (
	RiskAvoid      RiskMode = "AVOID"
	RiskReduced    RiskMode = "REDUCED"
	RiskNormal     RiskMode = "NORMAL"
	RiskAggressive RiskMode = "AGGRESSIVE"
)

// Verdict is the actionable trade decision.
type Verdict string

const (
	VerdictSkip     Verdict = "SKIP"
	VerdictWait     Verdict = "WAIT"
	VerdictDownsize Verdict = "DOWNSIZE"
	VerdictConfirm  Verdict = "CONFIRM"
)

// RiskAssessment is the classifier output with its ordered rationale.
type RiskAssessment struct {
	RiskMode   RiskMode `json:"risk_mode"`
	Multiplier float64  `json:"multiplier"`
	Verdict    Verdict  `json:"verdict"`
	Warnings   []string `json:"warnings"`
	Agreements []string `json:"agreements"`
}
