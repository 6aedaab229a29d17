package risk

import (
	"fmt"

	"SignalDesk/internal/domain/models"
)

// Rationale thresholds. Funding is in percent, crowding in percent of accounts.
const (
	fundingHigh     = 0.3
	fundingLow      = 0.05
	crowdedPct      = 70.0
	heavyPct        = 60.0
	balancedLow     = 45.0
	balancedHigh    = 55.0
	liquidationSkew = 0.3
	greedZone       = 75.0
	fearZone        = 25.0
	lowConviction   = 55.0
	highConviction  = 70.0
)

// side holds the direction-relative readings: for a SHORT every metric is
// mirrored so the same threshold table applies.
type side struct {
	name        string
	opposite    string
	funding     float64
	crowdPct    float64
	with        models.Bias
	against     models.Bias
	oiWith      models.OITrend
	oiAgainst   models.OITrend
	liquidation float64
	fearGreed   float64
}

func sideOf(s models.SignalSnapshot) (side, bool) {
	switch s.Direction {
	case models.DirectionLong:
		return side{
			name:        "longs",
			opposite:    "shorts",
			funding:     s.FundingRate,
			crowdPct:    s.LongPct(),
			with:        models.BiasBullish,
			against:     models.BiasBearish,
			oiWith:      models.OIRising,
			oiAgainst:   models.OIFalling,
			liquidation: s.LiquidationImbalance,
			fearGreed:   s.FearGreedIndex,
		}, true
	case models.DirectionShort:
		return side{
			name:        "shorts",
			opposite:    "longs",
			funding:     -s.FundingRate,
			crowdPct:    100 - s.LongPct(),
			with:        models.BiasBearish,
			against:     models.BiasBullish,
			oiWith:      models.OIFalling,
			oiAgainst:   models.OIRising,
			liquidation: -s.LiquidationImbalance,
			fearGreed:   100 - s.FearGreedIndex,
		}, true
	default:
		return side{}, false
	}
}

// rationale evaluates the threshold table in a fixed order: funding, crowding,
// smart money, open interest, liquidations, fear/greed, conviction.
func rationale(s models.SignalSnapshot) (warnings, agreements []string) {
	warnings, agreements = []string{}, []string{}
	warn := func(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) }
	agree := func(format string, args ...any) { agreements = append(agreements, fmt.Sprintf(format, args...)) }

	if sd, ok := sideOf(s); ok {
		switch {
		case sd.funding > fundingHigh:
			warn("funding %.3f%% is expensive for %s", s.FundingRate, sd.name)
		case sd.funding < fundingLow:
			agree("funding %.3f%% is cheap for %s", s.FundingRate, sd.name)
		}

		switch {
		case sd.crowdPct > crowdedPct:
			warn("%s crowded: %.1f%% of accounts", sd.name, sd.crowdPct)
		case sd.crowdPct > heavyPct:
			warn("%s heavy: %.1f%% of accounts", sd.name, sd.crowdPct)
		case sd.crowdPct > balancedLow && sd.crowdPct < balancedHigh:
			agree("balanced positioning: %.1f%% %s", sd.crowdPct, sd.name)
		}

		switch s.SmartMoneyBias {
		case sd.against:
			warn("smart money is %s", s.SmartMoneyBias)
		case sd.with:
			agree("smart money is %s", s.SmartMoneyBias)
		}

		switch s.OpenInterestTrend {
		case sd.oiAgainst:
			warn("open interest %s", s.OpenInterestTrend)
		case sd.oiWith:
			agree("open interest %s", s.OpenInterestTrend)
		}

		switch {
		case sd.liquidation < -liquidationSkew:
			warn("liquidations hitting %s (imbalance %.2f)", sd.name, s.LiquidationImbalance)
		case sd.liquidation > liquidationSkew:
			agree("liquidations hitting %s (imbalance %.2f)", sd.opposite, s.LiquidationImbalance)
		}

		switch {
		case sd.fearGreed >= greedZone:
			warn("fear/greed %.0f is against %s", s.FearGreedIndex, sd.name)
		case sd.fearGreed <= fearZone:
			agree("fear/greed %.0f favours %s", s.FearGreedIndex, sd.name)
		}
	}

	switch {
	case s.Score < lowConviction:
		warn("low conviction score %.1f", s.Score)
	case s.Score > highConviction:
		agree("high conviction score %.1f", s.Score)
	}
	return warnings, agreements
}
