package domain

type Regime string

const (
	RegimeRange Regime = "RANGE"
	RegimeTrend Regime = "TREND"
)

// IndicatorSnapshot is recomputed on every window update and never mutated:
// each update replaces the previous snapshot wholesale.
type IndicatorSnapshot struct {
	ATR14          float64 `json:"atr14"`
	ADX            float64 `json:"adx"`
	Regime         Regime  `json:"regime"`
	VolumeRatio    float64 `json:"volume_ratio"`
	RegressionMean float64 `json:"regression_mean"`
	RegressionStd  float64 `json:"regression_std"`
}

// VolumeZone is one bucket of the volume histogram over the window's
// price range.
type VolumeZone struct {
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Volume float64 `json:"volume"`
	IsHVN  bool    `json:"is_hvn"`
	IsPOC  bool    `json:"is_poc"`
}

func (z VolumeZone) Mid() float64 { return (z.Low + z.High) / 2 }

// RegressionChannel holds the OLS line over (bar index, close) and bands at
// 1.5 and 2 standard deviations of the residuals.
type RegressionChannel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Std       float64 `json:"std"`
}

// ValueAt returns the regression line value at bar index i.
func (r RegressionChannel) ValueAt(i int) float64 {
	return r.Intercept + r.Slope*float64(i)
}

// Bands returns the channel boundaries at the last bar: mean +/- 1.5 std and
// mean +/- 2 std.
func (r RegressionChannel) Bands(lastIndex int) []float64 {
	mean := r.ValueAt(lastIndex)
	return []float64{
		mean - 2*r.Std,
		mean - 1.5*r.Std,
		mean + 1.5*r.Std,
		mean + 2*r.Std,
	}
}
