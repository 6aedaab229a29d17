package indicators

// MACDTrend labels the MACD reading at the latest point.
type MACDTrend string

const (
	MACDBullish MACDTrend = "bullish"
	MACDBearish MACDTrend = "bearish"
	MACDNeutral MACDTrend = "neutral"
)

// MACDResult is the latest MACD line, signal line and histogram.
type MACDResult struct {
	MACD      float64   `json:"macd"`
	Signal    float64   `json:"signal"`
	Histogram float64   `json:"histogram"`
	Trend     MACDTrend `json:"trend"`
}

// MACD computes fast and slow EMA series over the whole history, aligns the
// fast series to the slow one, and smooths the difference with a signal-period
// EMA. It needs at least slow+signal closes.
func MACD(closes []float64, fast, slow, signal int) (MACDResult, bool) {
	if fast <= 0 || signal <= 0 || fast >= slow || len(closes) < slow+signal {
		return MACDResult{}, false
	}
	fastSeries, ok := EMASeries(closes, fast)
	if !ok {
		return MACDResult{}, false
	}
	slowSeries, ok := EMASeries(closes, slow)
	if !ok {
		return MACDResult{}, false
	}

	// fast starts at index fast-1, slow at slow-1
	offset := slow - fast
	line := make([]float64, len(slowSeries))
	for i := range slowSeries {
		line[i] = fastSeries[i+offset] - slowSeries[i]
	}

	signalSeries, ok := EMASeries(line, signal)
	if !ok {
		return MACDResult{}, false
	}

	res := MACDResult{
		MACD:   line[len(line)-1],
		Signal: signalSeries[len(signalSeries)-1],
	}
	res.Histogram = res.MACD - res.Signal
	switch {
	case res.Histogram > 0 && res.MACD > 0:
		res.Trend = MACDBullish
	case res.Histogram < 0 && res.MACD < 0:
		res.Trend = MACDBearish
	default:
		res.Trend = MACDNeutral
	}
	return res, true
}
