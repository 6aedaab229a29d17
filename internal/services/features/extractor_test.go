package features

import (
	"errors"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"
)

func bar(min int, close float64) models.PriceBar {
	return models.PriceBar{Timestamp: time.Unix(0, 0).UTC().Add(time.Duration(min) * time.Minute), Close: close}
}

func TestValidateSeriesEmpty(t *testing.T) {
	err := ValidateSeries(models.PriceSeries{})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestValidateSeriesNonMonotonic(t *testing.T) {
	s := models.PriceSeries{Bars: []models.PriceBar{bar(0, 1), bar(2, 2), bar(1, 3)}}
	if err := ValidateSeries(s); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	dup := models.PriceSeries{Bars: []models.PriceBar{bar(0, 1), bar(0, 2)}}
	if err := ValidateSeries(dup); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected invalid input for duplicate timestamp, got %v", err)
	}
}

func TestValidateVolumes(t *testing.T) {
	s := models.PriceSeries{Bars: []models.PriceBar{bar(0, 1), bar(1, 2)}}
	if err := ValidateVolumes(s, nil); err != nil {
		t.Fatalf("nil volumes should pass: %v", err)
	}
	if err := ValidateVolumes(s, []float64{1}); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected length mismatch error, got %v", err)
	}
	if err := ValidateVolumes(s, []float64{1, -1}); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected negative volume error, got %v", err)
	}
}

func TestSeriesFromCandlesOrdersAndDedups(t *testing.T) {
	in := []models.PriceBar{bar(2, 3), bar(0, 1), bar(1, 2), bar(1, 20)}
	s := SeriesFromCandles("BTCUSDT", "1m", in)
	if err := ValidateSeries(s); err != nil {
		t.Fatalf("expected valid series: %v", err)
	}
	got := s.Closes()
	want := []float64{1, 20, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d bars, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("close[%d]=%v, want %v", i, got[i], want[i])
		}
	}
}

func TestVolumesIfPresent(t *testing.T) {
	s := models.PriceSeries{Bars: []models.PriceBar{bar(0, 1), bar(1, 2)}}
	if v := VolumesIfPresent(s); v != nil {
		t.Fatalf("expected nil for volume-less bars, got %v", v)
	}
	s.Bars[1].Volume = 5
	if v := VolumesIfPresent(s); len(v) != 2 || v[1] != 5 {
		t.Fatalf("unexpected volumes %v", v)
	}
}
