package usecase

import (
	"fmt"
	"math"
	"time"

	"github.com/dijiclick/pepebot/internal/domain"
)

type DispatchConfig struct {
	Symbol         string
	AccountBalance float64
	RiskPercent    float64 // e.g. 0.2 for 0.2% of balance per trade
	Leverage       int
}

// Dispatcher is a pure formatter: it maps a DECIDED(ALERT) outcome plus its
// originating layer and verdicts into an immutable AlertPayload. SKIP
// outcomes never reach it; they become structured log records upstream.
type Dispatcher struct {
	cfg DispatchConfig
	now func() time.Time
}

func NewDispatcher(cfg DispatchConfig) *Dispatcher {
	return &Dispatcher{cfg: cfg, now: time.Now}
}

func (d *Dispatcher) BuildAlert(out *Outcome, snap domain.IndicatorSnapshot) *domain.AlertPayload {
	tech := *out.Technical
	return &domain.AlertPayload{
		Symbol:    d.cfg.Symbol,
		Direction: tech.Direction,
		Entry:     out.Event.CurrentPrice,
		TP:        tech.TP,
		SL:        tech.SL,
		Size:      PositionSize(d.cfg.AccountBalance, d.cfg.RiskPercent, out.Event.CurrentPrice, tech.SL),
		Layer:     out.Event.Layer,
		Snapshot:  snap,
		Technical: tech,
		Sentiment: out.Sentiment,
		CreatedAt: d.now().UTC(),
	}
}

// Fallback renders the plain-text form handed to the notifier alongside the
// structured payload.
func (d *Dispatcher) Fallback(alert *domain.AlertPayload) string {
	return fmt.Sprintf("%s %s entry %.8f tp %.8f sl %.8f (%d%% confidence)",
		alert.Direction, alert.Symbol, alert.Entry, alert.TP, alert.SL, alert.Technical.Confidence)
}

// PositionSize converts the risk budget into a position size in USDT:
// riskAmount / stop distance. Zero stop distance sizes to zero rather than
// dividing by it.
func PositionSize(balance, riskPct, entry, stopLoss float64) float64 {
	if entry == 0 {
		return 0
	}
	riskAmount := balance * (riskPct / 100)
	stopDistPct := math.Abs(entry-stopLoss) / entry
	if stopDistPct == 0 {
		return 0
	}
	return math.Round(riskAmount/stopDistPct*100) / 100
}
