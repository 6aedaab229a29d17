// Package discovery combines the discovery, confirmation and validation phase
// scores into one tiered composite.
package discovery

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"SignalDesk/internal/domain/models"
)

// Phase maxima. They sum to 100 so the composite total is a plain sum.
const (
	MaxDiscovery    = 30.0
	MaxConfirmation = 35.0
	MaxValidation   = 35.0
)

// CapAdjustment is the breakdown entry recorded when sub-metric points exceed
// the phase maximum.
const CapAdjustment = "cap_adjustment"

// Signal labels, one per tier.
const (
	SignalStrongBuy = "STRONG_BUY"
	SignalBuy       = "BUY"
	SignalWatch     = "WATCH"
	SignalAvoid     = "AVOID"
)

const breakdownTolerance = 0.01

// NewPhase builds a phase from named sub-metric points. Negative points are
// kept as penalties, but the phase score never drops below zero or exceeds maxScore;
// any clipping is written back into the breakdown so it still sums to Score.
// Non-finite points are kept in the breakdown but left out of the sum, so
// Compose rejects the phase instead of scoring it.
func NewPhase(name string, maxScore float64, breakdown map[string]float64) models.PhaseScore {
	b := make(map[string]float64, len(breakdown)+1)
	sum := decimal.Zero
	for k, v := range breakdown {
		b[k] = v
		if finite(v) {
			sum = sum.Add(decimal.NewFromFloat(v))
		}
	}
	if !finite(maxScore) {
		return models.PhaseScore{Name: name, Score: sum.Round(2).InexactFloat64(), MaxScore: maxScore, Breakdown: b}
	}
	limit := decimal.NewFromFloat(maxScore)
	switch {
	case sum.GreaterThan(limit):
		b[CapAdjustment] = limit.Sub(sum).InexactFloat64()
		sum = limit
	case sum.IsNegative():
		b[CapAdjustment] = sum.Neg().InexactFloat64()
		sum = decimal.Zero
	}
	return models.PhaseScore{
		Name:      name,
		Score:     sum.Round(2).InexactFloat64(),
		MaxScore:  maxScore,
		Breakdown: b,
	}
}

// Compose sums the three phases into a composite and assigns its tier.
func Compose(disc, conf, valid models.PhaseScore) (models.CompositeScore, error) {
	phases := []struct {
		p   models.PhaseScore
		max float64
	}{
		{disc, MaxDiscovery},
		{conf, MaxConfirmation},
		{valid, MaxValidation},
	}

	total := decimal.Zero
	out := make([]models.PhaseScore, 0, len(phases))
	for _, ph := range phases {
		if err := validatePhase(ph.p, ph.max); err != nil {
			return models.CompositeScore{}, err
		}
		total = total.Add(decimal.NewFromFloat(ph.p.Score))
		out = append(out, ph.p)
	}

	t := total.Round(2).InexactFloat64()
	tier, signal := TierFor(t)
	return models.CompositeScore{
		Total:  t,
		Tier:   tier,
		Signal: signal,
		Phases: out,
	}, nil
}

// TierFor bands a composite total. Every value maps to exactly one tier.
func TierFor(total float64) (models.Tier, string) {
	switch {
	case total >= 80:
		return models.TierDiamond, SignalStrongBuy
	case total >= 65:
		return models.TierGold, SignalBuy
	case total >= 50:
		return models.TierSilver, SignalWatch
	default:
		return models.TierBronze, SignalAvoid
	}
}

func validatePhase(p models.PhaseScore, want float64) error {
	if p.MaxScore != want {
		return fmt.Errorf("phase %q: max score %v, want %v: %w", p.Name, p.MaxScore, want, models.ErrInvalidInput)
	}
	if !finite(p.Score) || p.Score < 0 || p.Score > p.MaxScore {
		return fmt.Errorf("phase %q: score %v outside [0, %v]: %w", p.Name, p.Score, p.MaxScore, models.ErrInvalidInput)
	}
	sum := decimal.Zero
	for k, v := range p.Breakdown {
		if !finite(v) {
			return fmt.Errorf("phase %q: breakdown %q is %v: %w", p.Name, k, v, models.ErrInvalidInput)
		}
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	diff := sum.Sub(decimal.NewFromFloat(p.Score)).Abs()
	if diff.GreaterThan(decimal.NewFromFloat(breakdownTolerance)) {
		return fmt.Errorf("phase %q: breakdown sums to %s, score is %v: %w", p.Name, sum.String(), p.Score, models.ErrInvalidInput)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
