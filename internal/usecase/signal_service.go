package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/domain"
	"github.com/dijiclick/pepebot/internal/indicator"
)

// Metrics is the slice of the metrics recorder the engine needs.
type Metrics interface {
	RecordWindow()
	RecordAnalysisCall(stage string)
	RecordSkip(reason string)
	RecordAlert()
	SetSpend(usd float64)
}

// SignalService runs the whole pipeline for one candle-window update:
// indicators, layer detection, proximity check and the decision funnel, in
// order, with no internal parallelism. Only the analysis call blocks; while
// one funnel instance is mid-flight, new proximity events are dropped with a
// "decision in progress" skip, because a stale scalping decision is
// worthless.
type SignalService struct {
	symbol       string
	adxThreshold float64

	detector   *LayerDetector
	scanner    *ProximityScanner
	governor   *CostGovernor
	funnel     *DecisionFunnel
	dispatcher *Dispatcher
	notifier   domain.Notifier
	repo       domain.UsageRepository
	metrics    Metrics
	logger     *zap.Logger

	inFlight atomic.Bool

	mu          sync.RWMutex
	layers      []domain.Layer
	snapshot    *domain.IndicatorSnapshot
	lastPrice   float64
	updateCount int
}

func NewSignalService(
	symbol string,
	adxThreshold float64,
	detector *LayerDetector,
	scanner *ProximityScanner,
	governor *CostGovernor,
	funnel *DecisionFunnel,
	dispatcher *Dispatcher,
	notifier domain.Notifier,
	repo domain.UsageRepository,
	metrics Metrics,
	logger *zap.Logger,
) *SignalService {
	return &SignalService{
		symbol:       symbol,
		adxThreshold: adxThreshold,
		detector:     detector,
		scanner:      scanner,
		governor:     governor,
		funnel:       funnel,
		dispatcher:   dispatcher,
		notifier:     notifier,
		repo:         repo,
		metrics:      metrics,
		logger:       logger,
	}
}

// ProcessWindow handles one window update end to end. It returns
// domain.ErrInsufficientHistory while the window is still filling; every
// other failure degrades to a logged SKIP, never an error, so the pipeline
// cannot freeze on a bad event.
func (s *SignalService) ProcessWindow(ctx context.Context, candles []domain.Candle) error {
	if s.metrics != nil {
		s.metrics.RecordWindow()
	}
	if len(candles) < indicator.MinHistory {
		return domain.ErrInsufficientHistory
	}

	snapshot, err := indicator.Snapshot(candles, s.adxThreshold)
	if err != nil {
		return err
	}
	layers, err := s.detector.Detect(candles)
	if err != nil {
		return err
	}

	price := candles[len(candles)-1].Close

	s.mu.Lock()
	s.snapshot = snapshot
	s.layers = layers
	s.lastPrice = price
	s.updateCount++
	heartbeat := s.updateCount%60 == 0
	s.mu.Unlock()

	if heartbeat {
		usage := s.governor.Usage()
		s.logger.Info("engine active",
			zap.Float64("price", price),
			zap.Int("layers", len(layers)),
			zap.Int("calls_today", usage.Calls))
	}

	event := s.scanner.Scan(price, layers)
	if event == nil {
		return nil
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		s.logSkip(ReasonDecisionInProgress, event, nil)
		return nil
	}
	defer s.inFlight.Store(false)

	s.logger.Info("price near layer",
		zap.Float64("price", price),
		zap.String("side", string(event.Layer.Side)),
		zap.Float64("level", event.Layer.PriceLevel),
		zap.Float64("distance_pct", event.DistancePct))

	out := s.funnel.Run(ctx, domain.TechnicalQuery{
		Symbol:    s.symbol,
		Price:     price,
		Layer:     event.Layer,
		Snapshot:  *snapshot,
		OHLCVNote: ohlcvSummary(candles),
	})
	s.handleOutcome(ctx, out, *snapshot)
	return nil
}

func (s *SignalService) handleOutcome(ctx context.Context, out *Outcome, snap domain.IndicatorSnapshot) {
	if s.metrics != nil {
		if out.Technical != nil {
			s.metrics.RecordAnalysisCall("technical")
		}
		if out.Escalated {
			s.metrics.RecordAnalysisCall("sentiment")
		}
		s.metrics.SetSpend(s.governor.Usage().SpendUSD)
	}

	if out.Decision != DecisionAlert {
		s.logSkip(out.Reason, &out.Event, out.Technical)
		return
	}

	alert := s.dispatcher.BuildAlert(out, snap)
	if s.metrics != nil {
		s.metrics.RecordAlert()
	}
	s.logger.Info("alert decided",
		zap.String("direction", string(alert.Direction)),
		zap.Float64("entry", alert.Entry),
		zap.Int("confidence", alert.Technical.Confidence),
		zap.Bool("escalated", out.Escalated))

	if s.repo != nil {
		rec := &domain.SignalRecord{
			Symbol:     alert.Symbol,
			Direction:  alert.Direction,
			Entry:      alert.Entry,
			TP:         alert.TP,
			SL:         alert.SL,
			Confidence: alert.Technical.Confidence,
			Escalated:  out.Escalated,
			Reason:     alert.Technical.Reason,
			CreatedAt:  alert.CreatedAt,
		}
		if err := s.repo.SaveSignal(ctx, rec); err != nil {
			s.logger.Warn("failed to persist signal", zap.Error(err))
		}
	}

	// Fire and forget: delivery failure is logged, never retried here.
	if err := s.notifier.SendAlert(ctx, alert, s.dispatcher.Fallback(alert)); err != nil {
		s.logger.Error("alert delivery failed", zap.Error(err))
	}
}

func (s *SignalService) logSkip(reason string, event *domain.ProximityEvent, tech *domain.TechnicalVerdict) {
	if s.metrics != nil {
		s.metrics.RecordSkip(reason)
	}
	fields := []zap.Field{zap.String("reason", reason)}
	if event != nil {
		fields = append(fields,
			zap.String("side", string(event.Layer.Side)),
			zap.Float64("level", event.Layer.PriceLevel))
	}
	if tech != nil {
		fields = append(fields, zap.Int("confidence", tech.Confidence))
	}
	s.logger.Info("skip", fields...)
}

// Layers returns the current ranked layer set for read-only consumers.
func (s *SignalService) Layers() []domain.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Snapshot returns the latest indicator snapshot, or nil before the window
// first fills.
func (s *SignalService) Snapshot() *domain.IndicatorSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	snap := *s.snapshot
	return &snap
}

func (s *SignalService) LastPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPrice
}

func (s *SignalService) Usage() domain.DailyUsage {
	return s.governor.Usage()
}

// ohlcvSummary renders the last 10 candles for the analysis prompt.
func ohlcvSummary(candles []domain.Candle) string {
	start := len(candles) - 10
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for _, c := range candles[start:] {
		change := 0.0
		if c.Open != 0 {
			change = (c.Close - c.Open) / c.Open * 100
		}
		ts := time.UnixMilli(c.OpenTime).UTC().Format("15:04:05")
		fmt.Fprintf(&b, "%s: O=%.8f H=%.8f L=%.8f C=%.8f (%+.2f%%)\n", ts, c.Open, c.High, c.Low, c.Close, change)
	}
	return strings.TrimRight(b.String(), "\n")
}
