package usecase_test

import (
	"context"
	"sync"

	"github.com/dijiclick/pepebot/internal/domain"
)

// MockAnalyzer scripts the two analysis stages and counts invocations.
type MockAnalyzer struct {
	mu sync.Mutex

	TechnicalVerdict *domain.TechnicalVerdict
	TechnicalErr     error
	SentimentVerdict *domain.SentimentVerdict
	SentimentErr     error

	TechnicalCalls int
	SentimentCalls int
	LastTechnical  domain.TechnicalQuery
	LastSentiment  domain.SentimentQuery
}

func (m *MockAnalyzer) AnalyzeTechnical(ctx context.Context, q domain.TechnicalQuery) (*domain.TechnicalVerdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TechnicalCalls++
	m.LastTechnical = q
	if m.TechnicalErr != nil {
		return nil, m.TechnicalErr
	}
	v := *m.TechnicalVerdict
	return &v, nil
}

func (m *MockAnalyzer) AnalyzeSentiment(ctx context.Context, q domain.SentimentQuery) (*domain.SentimentVerdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentimentCalls++
	m.LastSentiment = q
	if m.SentimentErr != nil {
		return nil, m.SentimentErr
	}
	v := *m.SentimentVerdict
	return &v, nil
}

// MockNotifier records alert payloads instead of delivering them.
type MockNotifier struct {
	mu     sync.Mutex
	Alerts []*domain.AlertPayload
	Texts  []string
	Err    error
}

func (m *MockNotifier) SendAlert(ctx context.Context, alert *domain.AlertPayload, fallback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, alert)
	return m.Err
}

func (m *MockNotifier) SendText(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Texts = append(m.Texts, text)
	return m.Err
}

// MockUsageRepo keeps usage rows and signal records in memory.
type MockUsageRepo struct {
	mu      sync.Mutex
	Usage   map[string]*domain.DailyUsage
	Signals []*domain.SignalRecord
	Saves   int
}

func NewMockUsageRepo() *MockUsageRepo {
	return &MockUsageRepo{Usage: make(map[string]*domain.DailyUsage)}
}

func (m *MockUsageRepo) GetDailyUsage(ctx context.Context, day string) (*domain.DailyUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Usage[day]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MockUsageRepo) SaveDailyUsage(ctx context.Context, usage *domain.DailyUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *usage
	m.Usage[usage.Day] = &cp
	m.Saves++
	return nil
}

func (m *MockUsageRepo) SaveSignal(ctx context.Context, signal *domain.SignalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Signals = append(m.Signals, signal)
	return nil
}

func (m *MockUsageRepo) ListSignals(ctx context.Context, limit int) ([]*domain.SignalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.Signals) {
		limit = len(m.Signals)
	}
	out := make([]*domain.SignalRecord, limit)
	copy(out, m.Signals[len(m.Signals)-limit:])
	return out, nil
}
