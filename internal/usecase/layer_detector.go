package usecase

import (
	"math"
	"sort"

	"github.com/dijiclick/pepebot/internal/domain"
	"github.com/dijiclick/pepebot/internal/indicator"
)

const (
	// DefaultClusterThresholdPct groups swing points into one candidate when
	// they sit within this percentage of each other.
	DefaultClusterThresholdPct = 0.05
	// DefaultAlignThresholdPct is the distance within which a candidate
	// counts as aligned with a volume node or a channel band.
	DefaultAlignThresholdPct = 0.1
	// MaxLayers is the hard cap on retained layers per window.
	MaxLayers = 4
	// ConfluenceFloor is the minimum factor count to retain a candidate.
	ConfluenceFloor = 2
	// recentBars marks the tail of the window whose touches weigh double.
	recentBars = 20
)

// LayerDetector combines swing clustering, the volume histogram and the
// regression channel into a ranked set of at most MaxLayers layers.
type LayerDetector struct {
	clusterThresholdPct float64
	alignThresholdPct   float64
}

func NewLayerDetector(clusterThresholdPct, alignThresholdPct float64) *LayerDetector {
	if clusterThresholdPct <= 0 {
		clusterThresholdPct = DefaultClusterThresholdPct
	}
	if alignThresholdPct <= 0 {
		alignThresholdPct = DefaultAlignThresholdPct
	}
	return &LayerDetector{
		clusterThresholdPct: clusterThresholdPct,
		alignThresholdPct:   alignThresholdPct,
	}
}

// cluster is a candidate level built from swing points before scoring.
type cluster struct {
	price   float64
	touches int
	indices []int
}

// Detect runs the 3-factor confluence model over the window. The returned
// slice is ranked (factor count desc, touches desc, recency weight desc,
// distance asc) and deterministic for identical input.
func (d *LayerDetector) Detect(candles []domain.Candle) ([]domain.Layer, error) {
	if len(candles) < indicator.MinHistory {
		return nil, domain.ErrInsufficientHistory
	}

	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
	}
	currentPrice := candles[len(candles)-1].Close

	swingHighs, err := indicator.SwingHighs(highs)
	if err != nil {
		return nil, err
	}
	swingLows, err := indicator.SwingLows(lows)
	if err != nil {
		return nil, err
	}

	// Highs and lows cluster together: a level that flips between support
	// and resistance accumulates touches from both sides.
	points := make([]indicator.SwingPoint, 0, len(swingHighs)+len(swingLows))
	points = append(points, swingHighs...)
	points = append(points, swingLows...)
	sort.Slice(points, func(i, j int) bool { return points[i].Index < points[j].Index })

	clusters := d.clusterPoints(points)

	zones, err := indicator.VolumeZones(candles)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	channel, err := indicator.Regression(closes)
	if err != nil {
		return nil, err
	}
	bands := channel.Bands(len(candles) - 1)

	var layers []domain.Layer
	for _, cl := range clusters {
		if cl.touches < 2 {
			continue
		}

		factors := 1 // swing clustering itself
		if d.alignedWithZone(cl.price, zones, false) {
			factors++
		}
		if d.alignedWithBand(cl.price, bands) {
			factors++
		}
		if factors < ConfluenceFloor {
			continue
		}

		side := domain.SideResistance
		if cl.price < currentPrice {
			side = domain.SideSupport
		}

		layers = append(layers, domain.Layer{
			PriceLevel:    cl.price,
			Side:          side,
			FactorCount:   factors,
			TouchCount:    cl.touches,
			RecencyWeight: recencyWeight(cl.indices, len(candles)),
			DistancePct:   math.Abs(cl.price-currentPrice) / currentPrice * 100,
		})
	}

	sort.SliceStable(layers, func(i, j int) bool {
		a, b := layers[i], layers[j]
		if a.FactorCount != b.FactorCount {
			return a.FactorCount > b.FactorCount
		}
		if a.TouchCount != b.TouchCount {
			return a.TouchCount > b.TouchCount
		}
		if a.RecencyWeight != b.RecencyWeight {
			return a.RecencyWeight > b.RecencyWeight
		}
		return a.DistancePct < b.DistancePct
	})

	if len(layers) > MaxLayers {
		layers = layers[:MaxLayers]
	}

	// At most one layer carries the POC flag: the highest-ranked survivor
	// aligned with the point-of-control zone.
	for i := range layers {
		if d.alignedWithZone(layers[i].PriceLevel, zones, true) {
			layers[i].IsPOC = true
			break
		}
	}

	return layers, nil
}

// clusterPoints folds swing points into weighted-average price clusters.
func (d *LayerDetector) clusterPoints(points []indicator.SwingPoint) []cluster {
	var clusters []cluster
	for _, p := range points {
		merged := false
		for i := range clusters {
			if math.Abs(clusters[i].price-p.Price)/p.Price*100 < d.clusterThresholdPct {
				total := clusters[i].touches + 1
				clusters[i].price = (clusters[i].price*float64(clusters[i].touches) + p.Price) / float64(total)
				clusters[i].touches = total
				clusters[i].indices = append(clusters[i].indices, p.Index)
				merged = true
				break
			}
		}
		if !merged {
			clusters = append(clusters, cluster{
				price:   p.Price,
				touches: 1,
				indices: []int{p.Index},
			})
		}
	}
	return clusters
}

// recencyWeight sums touch contributions, doubling those in the most recent
// recentBars bars of the window.
func recencyWeight(indices []int, totalBars int) float64 {
	threshold := totalBars - recentBars
	var w float64
	for _, idx := range indices {
		if idx >= threshold {
			w += 2
		} else {
			w += 1
		}
	}
	return w
}

// alignedWithZone reports whether price falls within alignThresholdPct of a
// high-volume zone (or, with pocOnly, of the point-of-control zone). Distance
// to a zone is zero inside its bounds and measured to the nearest edge
// outside.
func (d *LayerDetector) alignedWithZone(price float64, zones []domain.VolumeZone, pocOnly bool) bool {
	for _, z := range zones {
		if pocOnly && !z.IsPOC {
			continue
		}
		if !pocOnly && !z.IsHVN {
			continue
		}
		var dist float64
		switch {
		case price < z.Low:
			dist = z.Low - price
		case price > z.High:
			dist = price - z.High
		}
		if dist/price*100 <= d.alignThresholdPct {
			return true
		}
	}
	return false
}

func (d *LayerDetector) alignedWithBand(price float64, bands []float64) bool {
	for _, b := range bands {
		if math.Abs(price-b)/price*100 <= d.alignThresholdPct {
			return true
		}
	}
	return false
}
