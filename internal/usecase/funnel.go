package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/domain"
)

// FunnelState is the tagged variant of the two-stage confirmation machine.
// Terminal is StateDecided; no state is revisited within a single event.
type FunnelState string

const (
	StateAwaitingEvent    FunnelState = "AWAITING_EVENT"
	StateGating           FunnelState = "GATING"
	StateTechnicalScreen  FunnelState = "TECHNICAL_SCREEN"
	StateEscalationGating FunnelState = "ESCALATION_GATING"
	StateSentimentScreen  FunnelState = "SENTIMENT_SCREEN"
	StateDecided          FunnelState = "DECIDED"
)

type Decision string

const (
	DecisionSkip  Decision = "SKIP"
	DecisionAlert Decision = "ALERT"
)

// Skip reasons surfaced through the outcome log.
const (
	ReasonRateLimited        = "rate-limited"
	ReasonEscalationLimited  = "escalation-limited"
	ReasonMalformedVerdict   = "malformed verdict"
	ReasonTransportFailure   = "analysis transport failure"
	ReasonLowConfidence      = "low confidence"
	ReasonModelDeclined      = "model declined setup"
	ReasonDecisionInProgress = "decision in progress"
)

// Outcome is the funnel's terminal result for one proximity event.
type Outcome struct {
	Decision  Decision
	Reason    string
	Event     domain.ProximityEvent
	Technical *domain.TechnicalVerdict
	Sentiment *domain.SentimentVerdict
	Escalated bool
}

type FunnelConfig struct {
	MinConfidence    int // escalation floor, inclusive
	HighConfidence   int // direct-alert floor, inclusive
	TechnicalCostUSD float64
	SentimentCostUSD float64
	CallTimeout      time.Duration
}

// DecisionFunnel turns a proximity event plus governor approval into a SKIP,
// ALERT, or ESCALATE-then-decide outcome. It never re-issues an analysis
// call for the same event: every failure degrades to a SKIP.
type DecisionFunnel struct {
	cfg      FunnelConfig
	governor *CostGovernor
	analyzer domain.Analyzer
	logger   *zap.Logger
}

func NewDecisionFunnel(cfg FunnelConfig, governor *CostGovernor, analyzer domain.Analyzer, logger *zap.Logger) *DecisionFunnel {
	return &DecisionFunnel{cfg: cfg, governor: governor, analyzer: analyzer, logger: logger}
}

// Run walks the machine for one event. The caller guarantees at most one
// in-flight run; the funnel itself holds no cross-event state.
func (f *DecisionFunnel) Run(ctx context.Context, q domain.TechnicalQuery) *Outcome {
	event := domain.ProximityEvent{
		Layer:        q.Layer,
		CurrentPrice: q.Price,
		DistancePct:  q.Layer.DistancePct,
		Direction:    domain.TradeDirection(q.Layer.Side),
	}
	out := &Outcome{Event: event}

	state := StateGating // AWAITING_EVENT -> GATING fired by the caller's non-nil event
	for state != StateDecided {
		switch state {
		case StateGating:
			state = f.gate(out)
		case StateTechnicalScreen:
			state = f.technicalScreen(ctx, q, out)
		case StateEscalationGating:
			state = f.escalationGate(out)
		case StateSentimentScreen:
			state = f.sentimentScreen(ctx, q, out)
		}
	}
	return out
}

func (f *DecisionFunnel) gate(out *Outcome) FunnelState {
	if err := f.governor.ApproveCall(f.cfg.TechnicalCostUSD); err != nil {
		out.Decision = DecisionSkip
		out.Reason = ReasonRateLimited
		return StateDecided
	}
	return StateTechnicalScreen
}

func (f *DecisionFunnel) technicalScreen(ctx context.Context, q domain.TechnicalQuery, out *Outcome) FunnelState {
	callCtx, cancel := context.WithTimeout(ctx, f.cfg.CallTimeout)
	defer cancel()

	verdict, err := f.analyzer.AnalyzeTechnical(callCtx, q)
	if err != nil {
		out.Decision = DecisionSkip
		out.Reason = skipReason(err)
		return StateDecided
	}
	if verdict.Confidence < 0 || verdict.Confidence > 100 {
		out.Decision = DecisionSkip
		out.Reason = ReasonMalformedVerdict
		return StateDecided
	}
	out.Technical = verdict

	if verdict.Direction == domain.SideNone {
		out.Decision = DecisionSkip
		out.Reason = ReasonModelDeclined
		return StateDecided
	}

	switch {
	case verdict.Confidence < f.cfg.MinConfidence:
		out.Decision = DecisionSkip
		out.Reason = ReasonLowConfidence
		return StateDecided
	case verdict.Confidence >= f.cfg.HighConfidence:
		out.Decision = DecisionAlert
		return StateDecided
	default:
		return StateEscalationGating
	}
}

func (f *DecisionFunnel) escalationGate(out *Outcome) FunnelState {
	if err := f.governor.ApproveEscalation(f.cfg.SentimentCostUSD); err != nil {
		out.Decision = DecisionSkip
		out.Reason = skipReason(err)
		return StateDecided
	}
	return StateSentimentScreen
}

func (f *DecisionFunnel) sentimentScreen(ctx context.Context, q domain.TechnicalQuery, out *Outcome) FunnelState {
	callCtx, cancel := context.WithTimeout(ctx, f.cfg.CallTimeout)
	defer cancel()

	verdict, err := f.analyzer.AnalyzeSentiment(callCtx, domain.SentimentQuery{
		Symbol:  q.Symbol,
		Price:   q.Price,
		Verdict: *out.Technical,
	})
	if err != nil {
		out.Decision = DecisionSkip
		out.Reason = skipReason(err)
		return StateDecided
	}
	out.Sentiment = verdict
	out.Escalated = true

	if verdict.TakeTrade {
		out.Decision = DecisionAlert
		return StateDecided
	}
	out.Decision = DecisionSkip
	out.Reason = verdict.Reason
	if out.Reason == "" {
		out.Reason = ReasonModelDeclined
	}
	return StateDecided
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return ReasonRateLimited
	case errors.Is(err, domain.ErrEscalationLimited):
		return ReasonEscalationLimited
	case errors.Is(err, domain.ErrMalformedVerdict):
		return ReasonMalformedVerdict
	default:
		return ReasonTransportFailure
	}
}
