package indicators

// VolumeKind is the price/volume quadrant of the latest bar.
type VolumeKind string

const (
	VolumeBullishConfirmed VolumeKind = "bullish_confirmed"
	VolumeBearishConfirmed VolumeKind = "bearish_confirmed"
	VolumeBullishWeak      VolumeKind = "bullish_weak"
	VolumeBearishWeak      VolumeKind = "bearish_weak"
)

// Confirmed reports whether volume backs the price move.
func (k VolumeKind) Confirmed() bool {
	return k == VolumeBullishConfirmed || k == VolumeBearishConfirmed
}

// Bullish reports whether price moved up.
func (k VolumeKind) Bullish() bool {
	return k == VolumeBullishConfirmed || k == VolumeBullishWeak
}

// VolumeSignal describes the latest bar against its trailing window.
type VolumeSignal struct {
	Kind     VolumeKind `json:"kind"`
	Ratio    float64    `json:"ratio"`
	Strength float64    `json:"strength"`
	PriceUp  bool       `json:"price_up"`
	VolumeUp bool       `json:"volume_up"`
}

// VolumeConfirmation compares the current volume with the mean of the period
// volumes before it, and the current close with the close period bars back.
// Volume is "up" when the ratio exceeds 1; price is "up" when strictly higher.
// A zero trailing average reads as ratio 1.
func VolumeConfirmation(closes, volumes []float64, period int) (VolumeSignal, bool) {
	if period <= 0 || len(closes) < period+1 || len(volumes) < period+1 {
		return VolumeSignal{}, false
	}
	nc, nv := len(closes), len(volumes)

	var sum float64
	for _, v := range volumes[nv-1-period : nv-1] {
		sum += v
	}
	avg := sum / float64(period)
	ratio := 1.0
	if avg > 0 {
		ratio = volumes[nv-1] / avg
	}

	sig := VolumeSignal{
		Ratio:    ratio,
		PriceUp:  closes[nc-1] > closes[nc-1-period],
		VolumeUp: ratio > 1,
	}
	switch {
	case sig.PriceUp && sig.VolumeUp:
		sig.Kind = VolumeBullishConfirmed
	case !sig.PriceUp && sig.VolumeUp:
		sig.Kind = VolumeBearishConfirmed
	case sig.PriceUp:
		sig.Kind = VolumeBullishWeak
	default:
		sig.Kind = VolumeBearishWeak
	}
	if sig.Kind.Confirmed() {
		sig.Strength = min(ratio, maxConfirmedStrength)
	} else {
		sig.Strength = ratio
	}
	return sig, true
}
