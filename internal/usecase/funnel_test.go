package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/domain"
	"github.com/dijiclick/pepebot/internal/usecase"
)

func funnelConfig() usecase.FunnelConfig {
	return usecase.FunnelConfig{
		MinConfidence:    60,
		HighConfidence:   80,
		TechnicalCostUSD: 0.00028,
		SentimentCostUSD: 0.005,
		CallTimeout:      5 * time.Second,
	}
}

func openGovernor() *usecase.CostGovernor {
	return usecase.NewCostGovernor(usecase.GovernorConfig{
		MaxCallsPerDay: 500,
		MaxSpendUSD:    1.0,
		MaxEscalations: 100,
	}, nil, zap.NewNop())
}

func technicalQuery() domain.TechnicalQuery {
	return domain.TechnicalQuery{
		Symbol: "1000PEPEUSDT",
		Price:  0.0000082,
		Layer: domain.Layer{
			PriceLevel:  0.00000819,
			Side:        domain.SideSupport,
			FactorCount: 3,
			TouchCount:  4,
			DistancePct: 0.08,
		},
		Snapshot: domain.IndicatorSnapshot{ATR14: 0.00000005, ADX: 18.0, Regime: domain.RegimeRange},
	}
}

func longVerdict(confidence int) *domain.TechnicalVerdict {
	return &domain.TechnicalVerdict{
		Direction:  domain.SideLong,
		Confidence: confidence,
		TP:         0.0000084,
		SL:         0.0000081,
		Reason:     "support bounce in range regime",
	}
}

func TestDecisionFunnel_ConfidenceBands(t *testing.T) {
	cases := []struct {
		name          string
		confidence    int
		takeTrade     bool
		wantDecision  usecase.Decision
		wantReason    string
		wantSentiment int
	}{
		{"below floor skips", 59, false, usecase.DecisionSkip, usecase.ReasonLowConfidence, 0},
		{"floor escalates", 60, true, usecase.DecisionAlert, "", 1},
		{"just under high escalates", 79, true, usecase.DecisionAlert, "", 1},
		{"high alerts directly", 80, false, usecase.DecisionAlert, "", 0},
		{"top of band alerts directly", 100, false, usecase.DecisionAlert, "", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analyzer := &MockAnalyzer{
				TechnicalVerdict: longVerdict(tc.confidence),
				SentimentVerdict: &domain.SentimentVerdict{
					TakeTrade: tc.takeTrade,
					Sentiment: domain.SentimentBullish,
					BuzzScore: 7,
				},
			}
			f := usecase.NewDecisionFunnel(funnelConfig(), openGovernor(), analyzer, zap.NewNop())

			out := f.Run(t.Context(), technicalQuery())

			assert.Equal(t, tc.wantDecision, out.Decision)
			assert.Equal(t, tc.wantReason, out.Reason)
			assert.Equal(t, 1, analyzer.TechnicalCalls)
			assert.Equal(t, tc.wantSentiment, analyzer.SentimentCalls)
			assert.Equal(t, tc.wantSentiment == 1, out.Escalated)
		})
	}
}

func TestDecisionFunnel_SentimentRejection(t *testing.T) {
	analyzer := &MockAnalyzer{
		TechnicalVerdict: longVerdict(70),
		SentimentVerdict: &domain.SentimentVerdict{
			TakeTrade: false,
			Sentiment: domain.SentimentBearish,
			BuzzScore: 2,
			Reason:    "btc dumping, crowd risk-off",
		},
	}
	f := usecase.NewDecisionFunnel(funnelConfig(), openGovernor(), analyzer, zap.NewNop())

	out := f.Run(t.Context(), technicalQuery())

	assert.Equal(t, usecase.DecisionSkip, out.Decision)
	assert.Equal(t, "btc dumping, crowd risk-off", out.Reason)
	assert.True(t, out.Escalated)
	require.NotNil(t, out.Sentiment)
	assert.Equal(t, domain.SentimentBearish, out.Sentiment.Sentiment)
}

func TestDecisionFunnel_ModelDeclines(t *testing.T) {
	analyzer := &MockAnalyzer{
		TechnicalVerdict: &domain.TechnicalVerdict{Direction: domain.SideNone, Confidence: 90},
	}
	f := usecase.NewDecisionFunnel(funnelConfig(), openGovernor(), analyzer, zap.NewNop())

	out := f.Run(t.Context(), technicalQuery())

	assert.Equal(t, usecase.DecisionSkip, out.Decision)
	assert.Equal(t, usecase.ReasonModelDeclined, out.Reason)
	assert.Equal(t, 0, analyzer.SentimentCalls)
}

func TestDecisionFunnel_OutOfRangeConfidence(t *testing.T) {
	for _, confidence := range []int{-1, 101} {
		analyzer := &MockAnalyzer{TechnicalVerdict: longVerdict(confidence)}
		f := usecase.NewDecisionFunnel(funnelConfig(), openGovernor(), analyzer, zap.NewNop())

		out := f.Run(t.Context(), technicalQuery())

		assert.Equal(t, usecase.DecisionSkip, out.Decision)
		assert.Equal(t, usecase.ReasonMalformedVerdict, out.Reason)
		assert.Nil(t, out.Technical)
	}
}

func TestDecisionFunnel_TransportFailureSkips(t *testing.T) {
	analyzer := &MockAnalyzer{TechnicalErr: domain.ErrAnalysisTransport}
	governor := openGovernor()
	f := usecase.NewDecisionFunnel(funnelConfig(), governor, analyzer, zap.NewNop())

	out := f.Run(t.Context(), technicalQuery())

	assert.Equal(t, usecase.DecisionSkip, out.Decision)
	assert.Equal(t, usecase.ReasonTransportFailure, out.Reason)

	// The failed call still consumed budget: approval commits up front.
	assert.Equal(t, 1, governor.Usage().Calls)
}

func TestDecisionFunnel_MalformedVerdictSkips(t *testing.T) {
	analyzer := &MockAnalyzer{TechnicalErr: domain.ErrMalformedVerdict}
	f := usecase.NewDecisionFunnel(funnelConfig(), openGovernor(), analyzer, zap.NewNop())

	out := f.Run(t.Context(), technicalQuery())

	assert.Equal(t, usecase.DecisionSkip, out.Decision)
	assert.Equal(t, usecase.ReasonMalformedVerdict, out.Reason)
}

func TestDecisionFunnel_GateBlocksBeforeAnalysis(t *testing.T) {
	analyzer := &MockAnalyzer{TechnicalVerdict: longVerdict(90)}
	governor := usecase.NewCostGovernor(usecase.GovernorConfig{
		MaxCallsPerDay: 0,
		MaxSpendUSD:    1.0,
		MaxEscalations: 100,
	}, nil, zap.NewNop())
	f := usecase.NewDecisionFunnel(funnelConfig(), governor, analyzer, zap.NewNop())

	out := f.Run(t.Context(), technicalQuery())

	assert.Equal(t, usecase.DecisionSkip, out.Decision)
	assert.Equal(t, usecase.ReasonRateLimited, out.Reason)
	assert.Equal(t, 0, analyzer.TechnicalCalls)
}

func TestDecisionFunnel_EscalationCapSkips(t *testing.T) {
	analyzer := &MockAnalyzer{
		TechnicalVerdict: longVerdict(70),
		SentimentVerdict: &domain.SentimentVerdict{TakeTrade: true},
	}
	governor := usecase.NewCostGovernor(usecase.GovernorConfig{
		MaxCallsPerDay: 500,
		MaxSpendUSD:    1.0,
		MaxEscalations: 0,
	}, nil, zap.NewNop())
	f := usecase.NewDecisionFunnel(funnelConfig(), governor, analyzer, zap.NewNop())

	out := f.Run(t.Context(), technicalQuery())

	assert.Equal(t, usecase.DecisionSkip, out.Decision)
	assert.Equal(t, usecase.ReasonEscalationLimited, out.Reason)
	assert.Equal(t, 1, analyzer.TechnicalCalls)
	assert.Equal(t, 0, analyzer.SentimentCalls)
	assert.False(t, out.Escalated)
}
