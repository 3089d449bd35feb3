package indicator

import (
	"sort"

	"github.com/dijiclick/pepebot/internal/domain"
)

const (
	// zoneCount partitions the window's price range into equal-width buckets.
	zoneCount = 10
	// hvnShare marks the top share of zones by volume as high-volume nodes.
	hvnShare = 0.3
)

// VolumeZones builds the volume histogram for the window. Each candle's
// volume is assigned to the zone containing its typical price (H+L+C)/3.
// The top 30% of zones by volume are flagged HVN and the single highest is
// the point of control.
func VolumeZones(candles []domain.Candle) ([]domain.VolumeZone, error) {
	if len(candles) < MinHistory {
		return nil, domain.ErrInsufficientHistory
	}

	lo, hi := candles[0].Low, candles[0].High
	for _, c := range candles {
		if c.Low < lo {
			lo = c.Low
		}
		if c.High > hi {
			hi = c.High
		}
	}
	if hi <= lo {
		// Flat window: a single degenerate zone carrying all volume.
		var total float64
		for _, c := range candles {
			total += c.Volume
		}
		return []domain.VolumeZone{{Low: lo, High: hi, Volume: total, IsHVN: true, IsPOC: true}}, nil
	}

	width := (hi - lo) / zoneCount
	zones := make([]domain.VolumeZone, zoneCount)
	for i := range zones {
		zones[i].Low = lo + float64(i)*width
		zones[i].High = zones[i].Low + width
	}

	for _, c := range candles {
		typical := (c.High + c.Low + c.Close) / 3
		idx := int((typical - lo) / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= zoneCount {
			idx = zoneCount - 1
		}
		zones[idx].Volume += c.Volume
	}

	// Rank zone indices by volume to flag HVNs and the POC.
	order := make([]int, zoneCount)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return zones[order[a]].Volume > zones[order[b]].Volume
	})

	hvnCount := int(float64(zoneCount) * hvnShare)
	for rank, idx := range order {
		if rank < hvnCount && zones[idx].Volume > 0 {
			zones[idx].IsHVN = true
		}
	}
	if zones[order[0]].Volume > 0 {
		zones[order[0]].IsPOC = true
	}

	return zones, nil
}
