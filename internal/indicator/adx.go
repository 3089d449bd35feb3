package indicator

import (
	"math"

	"github.com/dijiclick/pepebot/internal/domain"
)

// ADX computes Wilder's average directional index. Smoothed TR and
// directional movement are seeded over the first period bars; the ADX itself
// averages the DX series until period values accumulate, then switches to
// Wilder's smoothing. With a short window the value leans on few DX samples,
// which is the standard warm-up behavior.
func ADX(highs, lows, closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0, domain.ErrInsufficientHistory
	}

	directionalMovement := func(i int) (plusDM, minusDM float64) {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM = up
		}
		if down > up && down > 0 {
			minusDM = down
		}
		return
	}

	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += trueRange(highs, lows, closes, i)
		plusDM, minusDM := directionalMovement(i)
		smPlus += plusDM
		smMinus += minusDM
	}

	dx := func() float64 {
		if smTR == 0 {
			return 0
		}
		plusDI := 100 * smPlus / smTR
		minusDI := 100 * smMinus / smTR
		if plusDI+minusDI == 0 {
			return 0
		}
		return 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	}

	adx := dx()
	samples := 1.0

	for i := period + 1; i < len(closes); i++ {
		tr := trueRange(highs, lows, closes, i)
		plusDM, minusDM := directionalMovement(i)

		smTR = smTR - smTR/float64(period) + tr
		smPlus = smPlus - smPlus/float64(period) + plusDM
		smMinus = smMinus - smMinus/float64(period) + minusDM

		d := dx()
		if samples < float64(period) {
			adx = (adx*samples + d) / (samples + 1)
			samples++
		} else {
			adx = (adx*float64(period-1) + d) / float64(period)
		}
	}
	return adx, nil
}
