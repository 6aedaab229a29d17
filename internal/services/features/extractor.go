package features

import (
	"fmt"

	"SignalDesk/internal/domain/models"
)

// ValidateSeries rejects series that cannot be scored at all: empty, or with
// timestamps that are not strictly ascending.
func ValidateSeries(s models.PriceSeries) error {
	if len(s.Bars) == 0 {
		return fmt.Errorf("empty series: %w", models.ErrInvalidInput)
	}
	for i := 1; i < len(s.Bars); i++ {
		prev, cur := s.Bars[i-1].Timestamp, s.Bars[i].Timestamp
		if !cur.After(prev) {
			return fmt.Errorf("bar %d at %s not after %s: %w",
				i, cur.Format("2006-01-02T15:04:05Z07:00"), prev.Format("2006-01-02T15:04:05Z07:00"), models.ErrInvalidInput)
		}
	}
	return nil
}

// ValidateVolumes checks that an optional volume sequence lines up with the series.
func ValidateVolumes(s models.PriceSeries, volumes []float64) error {
	if volumes == nil {
		return nil
	}
	if len(volumes) != len(s.Bars) {
		return fmt.Errorf("volumes length %d, series length %d: %w", len(volumes), len(s.Bars), models.ErrInvalidInput)
	}
	for i, v := range volumes {
		if v < 0 {
			return fmt.Errorf("negative volume at %d: %w", i, models.ErrInvalidInput)
		}
	}
	return nil
}

// SeriesFromCandles orders raw candles ascending and drops duplicate
// timestamps, keeping the last occurrence.
func SeriesFromCandles(symbol, tf string, bars []models.PriceBar) models.PriceSeries {
	out := make([]models.PriceBar, 0, len(bars))
	for _, b := range bars {
		n := len(out)
		switch {
		case n == 0 || b.Timestamp.After(out[n-1].Timestamp):
			out = append(out, b)
		case b.Timestamp.Equal(out[n-1].Timestamp):
			out[n-1] = b
		default:
			out = insertOrdered(out, b)
		}
	}
	return models.PriceSeries{Symbol: symbol, Timeframe: tf, Bars: out}
}

func insertOrdered(bars []models.PriceBar, b models.PriceBar) []models.PriceBar {
	i := len(bars)
	for i > 0 && bars[i-1].Timestamp.After(b.Timestamp) {
		i--
	}
	if i > 0 && bars[i-1].Timestamp.Equal(b.Timestamp) {
		bars[i-1] = b
		return bars
	}
	bars = append(bars, models.PriceBar{})
	copy(bars[i+1:], bars[i:])
	bars[i] = b
	return bars
}

// VolumesIfPresent returns the series volumes, or nil when no bar carries a
// positive volume so volume confirmation is skipped instead of read as flat.
func VolumesIfPresent(s models.PriceSeries) []float64 {
	for _, b := range s.Bars {
		if b.Volume > 0 {
			return s.Volumes()
		}
	}
	return nil
}
