package repository

import (
	"fmt"
	"slices"
	"strings"

	"SignalDesk/internal/domain/models"
)

// Timeframe is a candle resolution.
type Timeframe string

const (
	TF1s Timeframe = "1s"
	TF1m Timeframe = "1m"
	TF5m Timeframe = "5m"
)

// Timeframes lists the resolutions a CandleSource serves, finest first.
var Timeframes = []Timeframe{TF1s, TF1m, TF5m}

// Valid reports whether tf is listed in Timeframes.
func (tf Timeframe) Valid() bool {
	return slices.Contains(Timeframes, tf)
}

// ParseTimeframe reads a configured resolution. Empty input selects 1m; an
// unknown one is rejected with ErrInvalidInput instead of falling back.
func ParseTimeframe(s string) (Timeframe, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TF1m, nil
	}
	tf := Timeframe(s)
	if !tf.Valid() {
		return "", fmt.Errorf("unsupported timeframe %q: %w", s, models.ErrInvalidInput)
	}
	return tf, nil
}
