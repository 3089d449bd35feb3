// Package indicator provides pure, stateless transforms over a fixed window
// of candles. Callers must not invoke anything here below MinHistory candles;
// every entry point fails fast with domain.ErrInsufficientHistory instead of
// returning degenerate values.
package indicator

import (
	"github.com/dijiclick/pepebot/internal/domain"
)

// MinHistory is the indicator floor. Below it the window cannot support even
// the shortest lookback (ATR 14 needs a prior close).
const MinHistory = 15

// DefaultADXThreshold splits RANGE from TREND when no override is configured.
const DefaultADXThreshold = 25.0

// volumeRatioBars is the averaging span for the volume ratio.
const volumeRatioBars = 20

// Snapshot computes the full indicator snapshot for a window. The result is
// owned by the window update that produced it and is replaced, never mutated.
func Snapshot(candles []domain.Candle, adxThreshold float64) (*domain.IndicatorSnapshot, error) {
	if len(candles) < MinHistory {
		return nil, domain.ErrInsufficientHistory
	}
	if adxThreshold <= 0 {
		adxThreshold = DefaultADXThreshold
	}

	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}

	atr, err := ATR(highs, lows, closes, 14)
	if err != nil {
		return nil, err
	}
	adx, err := ADX(highs, lows, closes, 14)
	if err != nil {
		return nil, err
	}

	regime := domain.RegimeTrend
	if adx < adxThreshold {
		regime = domain.RegimeRange
	}

	channel, err := Regression(closes)
	if err != nil {
		return nil, err
	}

	return &domain.IndicatorSnapshot{
		ATR14:          atr,
		ADX:            adx,
		Regime:         regime,
		VolumeRatio:    volumeRatio(candles),
		RegressionMean: channel.ValueAt(len(closes) - 1),
		RegressionStd:  channel.Std,
	}, nil
}

// volumeRatio compares the latest bar's volume against the average of the
// last volumeRatioBars bars (or the whole window when shorter).
func volumeRatio(candles []domain.Candle) float64 {
	span := volumeRatioBars
	if len(candles) < span {
		span = len(candles)
	}
	var sum float64
	for _, c := range candles[len(candles)-span:] {
		sum += c.Volume
	}
	if sum == 0 {
		return 1.0
	}
	avg := sum / float64(span)
	return candles[len(candles)-1].Volume / avg
}
