package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/domain"
)

// GovernorConfig bounds the cost of the external analysis calls.
type GovernorConfig struct {
	Cooldown       time.Duration
	MaxCallsPerDay int
	MaxSpendUSD    float64
	MaxEscalations int
}

// CostGovernor is a monotonic gate over the shared rate-limiter counters.
// The gating check and the counter increment form a single critical section
// so two events can never both pass a boundary. Counters reset atomically
// when the local calendar date rolls over; a call straddling rollover is
// charged to the day it was initiated in.
type CostGovernor struct {
	cfg    GovernorConfig
	repo   domain.UsageRepository
	logger *zap.Logger

	mu       sync.Mutex
	usage    domain.DailyUsage
	lastCall time.Time

	now func() time.Time // swappable clock for boundary tests
}

func NewCostGovernor(cfg GovernorConfig, repo domain.UsageRepository, logger *zap.Logger) *CostGovernor {
	g := &CostGovernor{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	g.usage.Day = g.now().Format("2006-01-02")

	// Restart-safe counters: reload today's usage if persisted. A stale day
	// is discarded, matching the invalidate-on-date-change contract.
	if repo != nil {
		if u, err := repo.GetDailyUsage(context.Background(), g.usage.Day); err == nil && u != nil {
			g.usage = *u
		}
	}
	return g
}

// SetClock replaces the governor's clock. Test hook, same pattern as the
// market services' timeNow field.
func (g *CostGovernor) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Usage returns a copy of today's counters.
func (g *CostGovernor) Usage() domain.DailyUsage {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollover(g.now())
	return g.usage
}

// ApproveCall gates a standard analysis call. On approval the call is
// committed immediately: the counters move and the cooldown restarts before
// the caller issues the request.
func (g *CostGovernor) ApproveCall(costUSD float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.rollover(now)

	// Cooldown floor is inclusive: exactly cooldown seconds elapsed approves.
	if !g.lastCall.IsZero() && now.Sub(g.lastCall) < g.cfg.Cooldown {
		return domain.ErrRateLimited
	}
	if g.usage.Calls >= g.cfg.MaxCallsPerDay {
		return domain.ErrRateLimited
	}
	if g.usage.SpendUSD+costUSD > g.cfg.MaxSpendUSD {
		return domain.ErrRateLimited
	}

	g.usage.Calls++
	g.usage.SpendUSD += costUSD
	g.lastCall = now
	g.persist()
	return nil
}

// ApproveEscalation gates the stage-2 sentiment call. The escalation cap is
// checked only here; the cooldown is not, because the escalation belongs to
// the same event as the technical call that just cleared it. The spend cap
// still applies.
func (g *CostGovernor) ApproveEscalation(costUSD float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.rollover(now)

	if g.usage.Escalations >= g.cfg.MaxEscalations {
		return domain.ErrEscalationLimited
	}
	if g.usage.SpendUSD+costUSD > g.cfg.MaxSpendUSD {
		return domain.ErrRateLimited
	}

	g.usage.Escalations++
	g.usage.SpendUSD += costUSD
	g.lastCall = now
	g.persist()
	return nil
}

// rollover resets all counters exactly once per calendar-day boundary.
// Callers hold g.mu.
func (g *CostGovernor) rollover(now time.Time) {
	day := now.Format("2006-01-02")
	if day == g.usage.Day {
		return
	}
	if g.logger != nil {
		g.logger.Info("daily usage reset",
			zap.String("previous_day", g.usage.Day),
			zap.Int("calls", g.usage.Calls),
			zap.Int("escalations", g.usage.Escalations),
			zap.Float64("spend_usd", g.usage.SpendUSD))
	}
	g.usage = domain.DailyUsage{Day: day}
	g.persist()
}

// persist saves counters best-effort. Callers hold g.mu.
func (g *CostGovernor) persist() {
	if g.repo == nil {
		return
	}
	u := g.usage
	if err := g.repo.SaveDailyUsage(context.Background(), &u); err != nil && g.logger != nil {
		g.logger.Warn("failed to persist daily usage", zap.Error(err))
	}
}
