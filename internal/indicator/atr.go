package indicator

import (
	"math"

	"github.com/dijiclick/pepebot/internal/domain"
)

// trueRange returns the TR at bar i (i >= 1): the largest of high-low,
// |high-prevClose| and |low-prevClose|.
func trueRange(highs, lows, closes []float64, i int) float64 {
	hl := highs[i] - lows[i]
	hc := math.Abs(highs[i] - closes[i-1])
	lc := math.Abs(lows[i] - closes[i-1])
	return math.Max(hl, math.Max(hc, lc))
}

// ATR computes Wilder's average true range over the trailing period bars.
// The seed is a simple average of the first period true ranges; subsequent
// bars apply Wilder's smoothing atr = (prev*(period-1) + tr) / period.
func ATR(highs, lows, closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0, domain.ErrInsufficientHistory
	}

	var seed float64
	for i := 1; i <= period; i++ {
		seed += trueRange(highs, lows, closes, i)
	}
	atr := seed / float64(period)

	for i := period + 1; i < len(closes); i++ {
		tr := trueRange(highs, lows, closes, i)
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return atr, nil
}
