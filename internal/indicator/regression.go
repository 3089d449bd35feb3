package indicator

import (
	"math"

	"github.com/dijiclick/pepebot/internal/domain"
)

// Regression fits an ordinary least-squares line over (bar index, close) and
// measures the standard deviation of the residuals for the channel bands.
func Regression(closes []float64) (*domain.RegressionChannel, error) {
	if len(closes) < MinHistory {
		return nil, domain.ErrInsufficientHistory
	}

	n := float64(len(closes))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range closes {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	var slope float64
	if denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}
	intercept := (sumY - slope*sumX) / n

	var residSq float64
	for i, y := range closes {
		r := y - (intercept + slope*float64(i))
		residSq += r * r
	}
	std := math.Sqrt(residSq / n)

	return &domain.RegressionChannel{
		Slope:     slope,
		Intercept: intercept,
		Std:       std,
	}, nil
}
