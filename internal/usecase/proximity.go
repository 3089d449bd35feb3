package usecase

import (
	"math"

	"github.com/dijiclick/pepebot/internal/domain"
)

// DefaultTriggerThresholdPct is the band around a layer that fires a
// proximity event.
const DefaultTriggerThresholdPct = 0.1

// ProximityScanner finds the nearest layer within the trigger band.
type ProximityScanner struct {
	triggerThresholdPct float64
}

func NewProximityScanner(triggerThresholdPct float64) *ProximityScanner {
	if triggerThresholdPct <= 0 {
		triggerThresholdPct = DefaultTriggerThresholdPct
	}
	return &ProximityScanner{triggerThresholdPct: triggerThresholdPct}
}

// Scan returns the nearest qualifying layer as a proximity event, or nil
// when no layer is within the trigger band. Exact distance ties break toward
// the higher factor count, then toward support over resistance, so the
// result is deterministic.
func (s *ProximityScanner) Scan(currentPrice float64, layers []domain.Layer) *domain.ProximityEvent {
	var best *domain.Layer
	bestDist := math.Inf(1)

	for i := range layers {
		l := layers[i]
		dist := math.Abs(l.PriceLevel-currentPrice) / currentPrice * 100
		if dist > s.triggerThresholdPct {
			continue
		}
		switch {
		case dist < bestDist:
			best, bestDist = &layers[i], dist
		case dist == bestDist && best != nil:
			if l.FactorCount > best.FactorCount ||
				(l.FactorCount == best.FactorCount && l.Side == domain.SideSupport && best.Side == domain.SideResistance) {
				best = &layers[i]
			}
		}
	}

	if best == nil {
		return nil
	}
	return &domain.ProximityEvent{
		Layer:        *best,
		CurrentPrice: currentPrice,
		DistancePct:  bestDist,
		Direction:    domain.TradeDirection(best.Side),
	}
}
