// Package risk maps a signal snapshot to a risk mode, a position multiplier, a
// verdict and an ordered rationale.
package risk

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"SignalDesk/internal/domain/models"
)

var validate = validator.New()

// ClassifyRiskMode runs the score-banded rule chain. fundingRate is in percent
// and longPct is the share of long accounts in [0, 100].
func ClassifyRiskMode(score, fundingRate, longPct float64) models.RiskMode {
	switch {
	case score < 50:
		return models.RiskAvoid
	case score < 55:
		if fundingRate > 0.25 || longPct > 70 {
			return models.RiskAvoid
		}
		return models.RiskReduced
	case score < 60:
		if fundingRate > 0.3 && longPct > 65 {
			return models.RiskAvoid
		}
		return models.RiskReduced
	case score < 65:
		if fundingRate > 0.4 && longPct > 70 {
			return models.RiskReduced
		}
		return models.RiskNormal
	case score >= 75:
		if fundingRate < 0.15 && longPct > 45 && longPct < 55 {
			return models.RiskAggressive
		}
		return models.RiskNormal
	default:
		return models.RiskNormal
	}
}

// MultiplierFor returns the position size multiplier of a risk mode.
func MultiplierFor(mode models.RiskMode) float64 {
	switch mode {
	case models.RiskReduced:
		return 0.5
	case models.RiskNormal:
		return 1.0
	case models.RiskAggressive:
		return 1.5
	default:
		return 0
	}
}

// DeriveVerdict turns a risk mode into the trade decision.
func DeriveVerdict(mode models.RiskMode, direction models.Direction, score float64) models.Verdict {
	if direction == models.DirectionNeutral {
		return models.VerdictSkip
	}
	switch mode {
	case models.RiskReduced:
		if score < 58 {
			return models.VerdictWait
		}
		return models.VerdictDownsize
	case models.RiskNormal:
		if score >= 65 {
			return models.VerdictConfirm
		}
		return models.VerdictDownsize
	case models.RiskAggressive:
		return models.VerdictConfirm
	default:
		return models.VerdictSkip
	}
}

// Assess classifies a snapshot. The snapshot is validated first; an unknown
// direction or out-of-range reading is rejected with ErrInvalidInput.
func Assess(s models.SignalSnapshot) (models.RiskAssessment, error) {
	if err := validate.Struct(s); err != nil {
		return models.RiskAssessment{}, fmt.Errorf("risk assess: %v: %w", err, models.ErrInvalidInput)
	}

	mode := ClassifyRiskMode(s.Score, s.FundingRate, s.LongPct())
	warnings, agreements := rationale(s)
	return models.RiskAssessment{
		RiskMode:   mode,
		Multiplier: MultiplierFor(mode),
		Verdict:    DeriveVerdict(mode, s.Direction, s.Score),
		Warnings:   warnings,
		Agreements: agreements,
	}, nil
}
