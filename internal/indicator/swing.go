package indicator

import "github.com/dijiclick/pepebot/internal/domain"

// swingLookback is the symmetric comparator span: a bar qualifies only if it
// beats the 2 bars on each side, so the 2 newest and 2 oldest bars of a
// window are never evaluated.
const swingLookback = 2

// SwingPoint is a confirmed local extreme within the window.
type SwingPoint struct {
	Index int
	Price float64
}

// SwingHighs returns bars whose high strictly exceeds the highs of the
// swingLookback bars before and after.
func SwingHighs(highs []float64) ([]SwingPoint, error) {
	if len(highs) < MinHistory {
		return nil, domain.ErrInsufficientHistory
	}
	var swings []SwingPoint
	for i := swingLookback; i < len(highs)-swingLookback; i++ {
		isSwing := true
		for j := 1; j <= swingLookback; j++ {
			if highs[i] <= highs[i-j] || highs[i] <= highs[i+j] {
				isSwing = false
				break
			}
		}
		if isSwing {
			swings = append(swings, SwingPoint{Index: i, Price: highs[i]})
		}
	}
	return swings, nil
}

// SwingLows is the mirror of SwingHighs on lows.
func SwingLows(lows []float64) ([]SwingPoint, error) {
	if len(lows) < MinHistory {
		return nil, domain.ErrInsufficientHistory
	}
	var swings []SwingPoint
	for i := swingLookback; i < len(lows)-swingLookback; i++ {
		isSwing := true
		for j := 1; j <= swingLookback; j++ {
			if lows[i] >= lows[i-j] || lows[i] >= lows[i+j] {
				isSwing = false
				break
			}
		}
		if isSwing {
			swings = append(swings, SwingPoint{Index: i, Price: lows[i]})
		}
	}
	return swings, nil
}
