// Package indicators holds pure functions over close (and volume) sequences.
// Every function reports insufficient input through its bool result; callers
// must skip the signal rather than read the zero value.
package indicators

import (
	"github.com/markcheno/go-talib"
)

const (
	DefaultRSIPeriod    = 14
	DefaultMACDFast     = 12
	DefaultMACDSlow     = 26
	DefaultMACDSignal   = 9
	DefaultVolumePeriod = 10

	// maxConfirmedStrength caps the strength of volume-confirmed moves.
	maxConfirmedStrength = 3.0
)

// MA is the arithmetic mean of the last period closes.
func MA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	out := talib.Sma(closes[len(closes)-period:], period)
	return out[len(out)-1], true
}

// EMASeries returns the exponential moving average for every point from index
// period-1 onward. The first value is the simple mean of the first period
// closes; each next value is prev + k*(close-prev) with k = 2/(period+1).
func EMASeries(closes []float64, period int) ([]float64, bool) {
	if period <= 0 || len(closes) < period {
		return nil, false
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(closes)-period+1)

	var seed float64
	for _, c := range closes[:period] {
		seed += c
	}
	seed /= float64(period)
	out = append(out, seed)

	prev := seed
	for _, c := range closes[period:] {
		prev += k * (c - prev)
		out = append(out, prev)
	}
	return out, true
}

// EMA returns the most recent exponential moving average value.
func EMA(closes []float64, period int) (float64, bool) {
	series, ok := EMASeries(closes, period)
	if !ok {
		return 0, false
	}
	return series[len(series)-1], true
}

// RSI uses simple averages of gains and losses over the most recent period
// diffs, so it needs period+1 closes. With no losses it reads 100 when there
// were gains and 50 on a flat window.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}
	window := closes[len(closes)-period-1:]
	var gain, loss float64
	for i := 1; i < len(window); i++ {
		d := window[i] - window[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	if avgLoss == 0 {
		if avgGain > 0 {
			return 100, true
		}
		return 50, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}
