package models

import (
	"errors"
	"time"
)

// ErrInvalidInput marks input rejected before any computation (empty series,
// unordered timestamps, malformed scores).
var ErrInvalidInput = errors.New("invalid input")

// PriceBar is a single OHLCV bar.
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// PriceSeries is an ascending, duplicate-free sequence of bars, most recent last.
type PriceSeries struct {
	Symbol    string     `json:"symbol,omitempty"`
	Timeframe string     `json:"timeframe,omitempty"`
	Bars      []PriceBar `json:"bars"`
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes returns a copy of the close prices in time order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns a copy of the bar volumes in time order.
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Last returns the most recent bar, false when the series is empty.
func (s PriceSeries) Last() (PriceBar, bool) {
	if len(s.Bars) == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
