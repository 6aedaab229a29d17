package indicators

// Crossover is the result of comparing two moving averages across the last bar.
type Crossover string

const (
	CrossoverGolden Crossover = "golden_cross"
	CrossoverDeath  Crossover = "death_cross"
	CrossoverNone   Crossover = "no_crossover"
)

// MACrossover compares the fast/slow MA pair on the full series against the
// pair on the series without its last point.
func MACrossover(closes []float64, fastPeriod, slowPeriod int) (Crossover, bool) {
	if fastPeriod <= 0 || slowPeriod <= 0 || len(closes) < max(fastPeriod, slowPeriod)+1 {
		return "", false
	}
	prev := closes[:len(closes)-1]

	fastNow, _ := MA(closes, fastPeriod)
	slowNow, _ := MA(closes, slowPeriod)
	fastPrev, _ := MA(prev, fastPeriod)
	slowPrev, _ := MA(prev, slowPeriod)

	switch {
	case fastPrev <= slowPrev && fastNow > slowNow:
		return CrossoverGolden, true
	case fastPrev >= slowPrev && fastNow < slowNow:
		return CrossoverDeath, true
	default:
		return CrossoverNone, true
	}
}
