// Package trend folds indicator readings into a bounded 0-100 trend score.
package trend

import (
	"fmt"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/services/features"
	ind "SignalDesk/internal/services/indicators"
)

const (
	// MinBars is the shortest series that gets scored; shorter input yields
	// the neutral default.
	MinBars = 30

	baseline = 50.0

	crossFast = 10
	crossSlow = 20

	crossoverPoints = 25.0
	rsiExtremePts   = 15.0
	rsiBiasPts      = 10.0
	macdPoints      = 30.0
	volumeConfirm   = 25.0
	volumeDiverge   = 5.0
)

// Signal names used as keys of TrendScore.Signals.
const (
	SignalMACrossover = "ma_crossover"
	SignalRSI         = "rsi"
	SignalMACD        = "macd"
	SignalVolume      = "volume"
)

// Score aggregates MA crossover, RSI, MACD and, when volumes are given, volume
// confirmation into one score. Signals without enough history are left out.
func Score(series models.PriceSeries, volumes []float64) (models.TrendScore, error) {
	if err := features.ValidateSeries(series); err != nil {
		return models.TrendScore{}, fmt.Errorf("trend score: %w", err)
	}
	if err := features.ValidateVolumes(series, volumes); err != nil {
		return models.TrendScore{}, fmt.Errorf("trend score: %w", err)
	}
	if series.Len() < MinBars {
		return models.NeutralTrendScore(), nil
	}

	closes := series.Closes()
	var r readings
	if c, ok := ind.MACrossover(closes, crossFast, crossSlow); ok {
		r.crossover = &c
	}
	if rsi, ok := ind.RSI(closes, ind.DefaultRSIPeriod); ok {
		r.rsi = &rsi
	}
	if m, ok := ind.MACD(closes, ind.DefaultMACDFast, ind.DefaultMACDSlow, ind.DefaultMACDSignal); ok {
		r.macd = &m
	}
	if volumes != nil {
		if v, ok := ind.VolumeConfirmation(closes, volumes, ind.DefaultVolumePeriod); ok {
			r.volume = &v
		}
	}

	score, signals := aggregate(r)
	label, conf := Classify(score)
	return models.TrendScore{
		Score:      score,
		Label:      label,
		Confidence: conf,
		Signals:    signals,
	}, nil
}

// readings holds the indicator values available for a series; nil means the
// indicator lacked history and is left out.
type readings struct {
	crossover *ind.Crossover
	rsi       *float64
	macd      *ind.MACDResult
	volume    *ind.VolumeSignal
}

// aggregate adds each available reading's adjustment to the baseline and
// clamps the result to [0, 100].
func aggregate(r readings) (float64, map[string]string) {
	score := baseline
	signals := make(map[string]string, 4)

	if r.crossover != nil {
		adj := crossoverAdjustment(*r.crossover)
		score += adj
		signals[SignalMACrossover] = describe(string(*r.crossover), adj)
	}
	if r.rsi != nil {
		zone, adj := rsiAdjustment(*r.rsi)
		score += adj
		signals[SignalRSI] = describe(fmt.Sprintf("%.1f %s", *r.rsi, zone), adj)
	}
	if r.macd != nil {
		adj := macdAdjustment(r.macd.Trend)
		score += adj
		signals[SignalMACD] = describe(fmt.Sprintf("%s hist=%.4f", r.macd.Trend, r.macd.Histogram), adj)
	}
	if r.volume != nil {
		adj := volumeAdjustment(r.volume.Kind)
		score += adj
		signals[SignalVolume] = describe(fmt.Sprintf("%s ratio=%.2f", r.volume.Kind, r.volume.Ratio), adj)
	}

	return clamp(score, 0, 100), signals
}

// Classify maps a score to its label and confidence band.
func Classify(score float64) (models.TrendLabel, models.Confidence) {
	switch {
	case score >= 70:
		return models.TrendStronglyBullish, models.ConfidenceHigh
	case score >= 60:
		return models.TrendBullish, models.ConfidenceMedium
	case score > 40:
		return models.TrendNeutral, models.ConfidenceLow
	case score > 30:
		return models.TrendBearish, models.ConfidenceMedium
	default:
		return models.TrendStronglyBearish, models.ConfidenceHigh
	}
}

func crossoverAdjustment(c ind.Crossover) float64 {
	switch c {
	case ind.CrossoverGolden:
		return crossoverPoints
	case ind.CrossoverDeath:
		return -crossoverPoints
	default:
		return 0
	}
}

func rsiAdjustment(rsi float64) (string, float64) {
	switch {
	case rsi > 70:
		return "overbought", -rsiExtremePts
	case rsi < 30:
		return "oversold", rsiExtremePts
	case rsi >= 55:
		return "bullish momentum", rsiBiasPts
	case rsi <= 45:
		return "bearish momentum", -rsiBiasPts
	default:
		return "neutral", 0
	}
}

func macdAdjustment(t ind.MACDTrend) float64 {
	switch t {
	case ind.MACDBullish:
		return macdPoints
	case ind.MACDBearish:
		return -macdPoints
	default:
		return 0
	}
}

func volumeAdjustment(k ind.VolumeKind) float64 {
	switch k {
	case ind.VolumeBullishConfirmed:
		return volumeConfirm
	case ind.VolumeBearishConfirmed:
		return -volumeConfirm
	case ind.VolumeBullishWeak:
		return volumeDiverge
	default:
		return -volumeDiverge
	}
}

func describe(state string, adj float64) string {
	return fmt.Sprintf("%s (%+g)", state, adj)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
