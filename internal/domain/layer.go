package domain

type LayerSide string

const (
	SideSupport    LayerSide = "SUPPORT"
	SideResistance LayerSide = "RESISTANCE"
)

// Layer is a clustered, confluence-scored price level acting as candidate
// support or resistance. A retained layer always has FactorCount >= 2.
type Layer struct {
	PriceLevel    float64   `json:"price_level"`
	Side          LayerSide `json:"side"`
	FactorCount   int       `json:"factor_count"`
	TouchCount    int       `json:"touch_count"`
	IsPOC         bool      `json:"is_poc"`
	RecencyWeight float64   `json:"recency_weight"`
	DistancePct   float64   `json:"distance_pct"`
}

// ProximityEvent is created when price enters the trigger band of a layer
// and consumed immediately by the governor gate.
type ProximityEvent struct {
	Layer        Layer
	CurrentPrice float64
	DistancePct  float64
	Direction    Side
}

// TradeDirection maps the layer side to the bounce direction: price bouncing
// off support goes long, off resistance goes short.
func TradeDirection(side LayerSide) Side {
	if side == SideSupport {
		return SideLong
	}
	return SideShort
}
