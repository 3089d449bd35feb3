package domain

import "context"

// Analyzer is the external reasoning collaborator. Both calls may fail with
// a transport error or return a malformed response; the caller maps either
// to a SKIP.
type Analyzer interface {
	AnalyzeTechnical(ctx context.Context, q TechnicalQuery) (*TechnicalVerdict, error)
	AnalyzeSentiment(ctx context.Context, q SentimentQuery) (*SentimentVerdict, error)
}

// Notifier is the fire-and-forget notification collaborator. Delivery
// failure is logged by the caller, never retried by the core.
type Notifier interface {
	SendAlert(ctx context.Context, alert *AlertPayload, fallback string) error
	SendText(ctx context.Context, text string) error
}

// MarketFeed supplies an ordered, fixed-length window of candles on each
// update. OpenTime is monotonically increasing; gap handling is out of scope.
type MarketFeed interface {
	OnWindow(callback func(candles []Candle))
	Backfill(ctx context.Context) error
	Stream(ctx context.Context) error
	Close() error
}

// UsageRepository persists rate-limiter counters keyed by local calendar day
// and the log of emitted signals.
type UsageRepository interface {
	GetDailyUsage(ctx context.Context, day string) (*DailyUsage, error)
	SaveDailyUsage(ctx context.Context, usage *DailyUsage) error
	SaveSignal(ctx context.Context, signal *SignalRecord) error
	ListSignals(ctx context.Context, limit int) ([]*SignalRecord, error)
}
