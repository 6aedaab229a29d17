package models

// Phase names of the discovery composite.
const (
	PhaseDiscovery    = "discovery"
	PhaseConfirmation = "confirmation"
	PhaseValidation   = "validation"
)

// PhaseScore is one pre-scaled component of the composite. Breakdown holds the
// named sub-metric points that add up to Score.
type PhaseScore struct {
	Name      string             `json:"name"`
	Score     float64            `json:"score"`
	MaxScore  float64            `json:"max_score"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// Tier bands the composite total.
type Tier string

const (
	TierDiamond Tier = "Diamond"
	TierGold    Tier = "Gold"
	TierSilver  Tier = "Silver"
	TierBronze  Tier = "Bronze"
)

// CompositeScore combines the three phases. Total is exactly the sum of the
// phase scores.
type CompositeScore struct {
	Total  float64      `json:"total"`
	Tier   Tier         `json:"tier"`
	Signal string       `json:"signal"`
	Phases []PhaseScore `json:"phases"`
}
