package trend

import (
	"errors"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"
	ind "SignalDesk/internal/services/indicators"
)

// mkSeries builds bars one minute apart from the given closes.
func mkSeries(closes []float64) models.PriceSeries {
	bars := make([]models.PriceBar, len(closes))
	t0 := time.Unix(0, 0).UTC()
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Open:      c,
			High:      c * 1.001,
			Low:       c * 0.999,
			Close:     c,
			Volume:    1000,
		}
	}
	return models.PriceSeries{Symbol: "TEST", Timeframe: "1m", Bars: bars}
}

func accel(start, step float64, n int) []float64 {
	out := make([]float64, n)
	p := start
	for i := range out {
		p += step * float64(i)
		out[i] = p
	}
	return out
}

func rising(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestScoreShortSeriesIsNeutral(t *testing.T) {
	ts, err := Score(mkSeries(accel(100, 0.5, 29)), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Score != 50 || ts.Label != models.TrendNeutral || ts.Confidence != models.ConfidenceLow {
		t.Fatalf("expected (50, neutral, low), got (%v, %s, %s)", ts.Score, ts.Label, ts.Confidence)
	}
	if len(ts.Signals) != 0 {
		t.Fatalf("expected no signals, got %v", ts.Signals)
	}
}

func TestScoreRejectsInvalidInput(t *testing.T) {
	if _, err := Score(models.PriceSeries{}, nil); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("empty series: expected invalid input, got %v", err)
	}
	s := mkSeries(rising(100, 1, 40))
	s.Bars[10].Timestamp = s.Bars[9].Timestamp
	if _, err := Score(s, nil); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("duplicate timestamp: expected invalid input, got %v", err)
	}
	if _, err := Score(mkSeries(rising(100, 1, 40)), rising(1, 1, 39)); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("volume mismatch: expected invalid input, got %v", err)
	}
}

func TestScoreStrongUptrend(t *testing.T) {
	closes := accel(100, 0.05, 80)
	vols := rising(1000, 10, 80)
	ts, err := Score(mkSeries(closes), vols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// overbought RSI -15, bullish MACD +30, confirmed volume +25, no cross
	if ts.Score != 90 {
		t.Fatalf("score = %v, want 90 (signals %v)", ts.Score, ts.Signals)
	}
	if ts.Label != models.TrendStronglyBullish || ts.Confidence != models.ConfidenceHigh {
		t.Fatalf("got %s/%s", ts.Label, ts.Confidence)
	}
	for _, k := range []string{SignalMACrossover, SignalRSI, SignalMACD, SignalVolume} {
		if _, ok := ts.Signals[k]; !ok {
			t.Errorf("missing signal %q in %v", k, ts.Signals)
		}
	}
}

func TestScoreStrongDowntrend(t *testing.T) {
	closes := accel(1000, -0.05, 80)
	vols := rising(1000, 10, 80)
	ts, err := Score(mkSeries(closes), vols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// oversold RSI +15, bearish MACD -30, confirmed selling -25
	if ts.Score != 10 {
		t.Fatalf("score = %v, want 10 (signals %v)", ts.Score, ts.Signals)
	}
	if ts.Label != models.TrendStronglyBearish || ts.Confidence != models.ConfidenceHigh {
		t.Fatalf("got %s/%s", ts.Label, ts.Confidence)
	}
}

func TestScoreWithoutVolumesOmitsVolumeSignal(t *testing.T) {
	ts, err := Score(mkSeries(accel(100, 0.05, 80)), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ts.Signals[SignalVolume]; ok {
		t.Fatal("volume signal should be omitted without volumes")
	}
	if ts.Score != 65 {
		t.Fatalf("score = %v, want 65", ts.Score)
	}
}

func TestScoreMACDOmittedBelowWarmup(t *testing.T) {
	// 30 bars: enough to score, not enough for MACD 12/26/9
	ts, err := Score(mkSeries(rising(100, 1, 30)), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ts.Signals[SignalMACD]; ok {
		t.Fatal("MACD should be omitted, not scored as zero")
	}
	// steady rise: no cross, RSI 100 overbought
	if ts.Score != 35 {
		t.Fatalf("score = %v, want 35", ts.Score)
	}
}

func TestScoreAlwaysBounded(t *testing.T) {
	shapes := [][]float64{
		accel(100, 0.2, 120),
		accel(10000, -0.2, 120),
		rising(100, 0, 60),
		append(rising(100, 0, 40), 200),
		append(rising(100, 0, 40), 10),
	}
	for i, closes := range shapes {
		ts, err := Score(mkSeries(closes), rising(1000, 50, len(closes)))
		if err != nil {
			t.Fatalf("shape %d: %v", i, err)
		}
		if ts.Score < 0 || ts.Score > 100 {
			t.Fatalf("shape %d: score %v out of bounds", i, ts.Score)
		}
	}
}

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		score float64
		label models.TrendLabel
		conf  models.Confidence
	}{
		{100, models.TrendStronglyBullish, models.ConfidenceHigh},
		{70, models.TrendStronglyBullish, models.ConfidenceHigh},
		{69.9, models.TrendBullish, models.ConfidenceMedium},
		{60, models.TrendBullish, models.ConfidenceMedium},
		{50, models.TrendNeutral, models.ConfidenceLow},
		{40.1, models.TrendNeutral, models.ConfidenceLow},
		{40, models.TrendBearish, models.ConfidenceMedium},
		{30.1, models.TrendBearish, models.ConfidenceMedium},
		{30, models.TrendStronglyBearish, models.ConfidenceHigh},
		{0, models.TrendStronglyBearish, models.ConfidenceHigh},
	}
	for _, tc := range cases {
		l, c := Classify(tc.score)
		if l != tc.label || c != tc.conf {
			t.Errorf("Classify(%v) = %s/%s, want %s/%s", tc.score, l, c, tc.label, tc.conf)
		}
	}
}

func TestRSIAdjustmentBoundaries(t *testing.T) {
	cases := []struct {
		rsi  float64
		zone string
		adj  float64
	}{
		{100, "overbought", -15},
		{70.01, "overbought", -15},
		{70, "bullish momentum", 10},
		{62, "bullish momentum", 10},
		{55, "bullish momentum", 10},
		{54.99, "neutral", 0},
		{50, "neutral", 0},
		{45.01, "neutral", 0},
		{45, "bearish momentum", -10},
		{38, "bearish momentum", -10},
		{30, "bearish momentum", -10},
		{29.99, "oversold", 15},
		{0, "oversold", 15},
	}
	for _, tc := range cases {
		zone, adj := rsiAdjustment(tc.rsi)
		if zone != tc.zone || adj != tc.adj {
			t.Errorf("rsiAdjustment(%v) = %q %+v, want %q %+v", tc.rsi, zone, adj, tc.zone, tc.adj)
		}
	}
}

func TestAggregateAdjustments(t *testing.T) {
	cross := func(c ind.Crossover) *ind.Crossover { return &c }
	rsi := func(v float64) *float64 { return &v }
	macd := func(tr ind.MACDTrend) *ind.MACDResult { return &ind.MACDResult{Trend: tr} }
	vol := func(k ind.VolumeKind) *ind.VolumeSignal { return &ind.VolumeSignal{Kind: k, Ratio: 1} }

	cases := []struct {
		name string
		r    readings
		want float64
	}{
		{"nothing available", readings{}, 50},
		{"golden cross", readings{crossover: cross(ind.CrossoverGolden)}, 75},
		{"death cross", readings{crossover: cross(ind.CrossoverDeath)}, 25},
		{"no cross", readings{crossover: cross(ind.CrossoverNone)}, 50},
		{"rsi bullish band", readings{rsi: rsi(62)}, 60},
		{"rsi bearish band", readings{rsi: rsi(38)}, 40},
		{"rsi neutral band", readings{rsi: rsi(50)}, 50},
		{"macd bullish", readings{macd: macd(ind.MACDBullish)}, 80},
		{"macd bearish", readings{macd: macd(ind.MACDBearish)}, 20},
		{"macd neutral", readings{macd: macd(ind.MACDNeutral)}, 50},
		{"volume confirms buying", readings{volume: vol(ind.VolumeBullishConfirmed)}, 75},
		{"volume confirms selling", readings{volume: vol(ind.VolumeBearishConfirmed)}, 25},
		{"bullish divergence", readings{volume: vol(ind.VolumeBullishWeak)}, 55},
		{"bearish divergence", readings{volume: vol(ind.VolumeBearishWeak)}, 45},
		{
			"golden cross in bullish rsi band with weak volume",
			readings{crossover: cross(ind.CrossoverGolden), rsi: rsi(60), volume: vol(ind.VolumeBullishWeak)},
			90,
		},
		{
			"death cross in bearish rsi band with bearish divergence",
			readings{crossover: cross(ind.CrossoverDeath), rsi: rsi(40), volume: vol(ind.VolumeBearishWeak)},
			10,
		},
		{
			"bullish band at the 55 boundary offsets bearish macd",
			readings{rsi: rsi(55), macd: macd(ind.MACDBearish)},
			30,
		},
		{
			"bearish band at the 30 boundary with death cross",
			readings{rsi: rsi(30), crossover: cross(ind.CrossoverDeath)},
			15,
		},
		{
			"everything bullish clamps at 100",
			readings{
				crossover: cross(ind.CrossoverGolden), rsi: rsi(70),
				macd: macd(ind.MACDBullish), volume: vol(ind.VolumeBullishConfirmed),
			},
			100,
		},
		{
			"everything bearish clamps at 0",
			readings{
				crossover: cross(ind.CrossoverDeath), rsi: rsi(45),
				macd: macd(ind.MACDBearish), volume: vol(ind.VolumeBearishConfirmed),
			},
			0,
		},
	}
	for _, tc := range cases {
		got, signals := aggregate(tc.r)
		if got != tc.want {
			t.Errorf("%s: score = %v, want %v (signals %v)", tc.name, got, tc.want, signals)
		}
	}

	_, signals := aggregate(readings{crossover: cross(ind.CrossoverGolden), volume: vol(ind.VolumeBearishWeak)})
	if signals[SignalMACrossover] != "golden_cross (+25)" || signals[SignalVolume] != "bearish_weak ratio=1.00 (-5)" {
		t.Fatalf("signals = %v", signals)
	}
	if _, ok := signals[SignalRSI]; ok {
		t.Fatal("missing reading must not produce a signal")
	}
}
