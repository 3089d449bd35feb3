package domain

import "time"

// AlertPayload is the terminal artifact of a DECIDED(ALERT) outcome. It is
// handed to the notifier once and never re-enters the engine.
type AlertPayload struct {
	Symbol    string            `json:"symbol"`
	Direction Side              `json:"direction"`
	Entry     float64           `json:"entry"`
	TP        float64           `json:"tp"`
	SL        float64           `json:"sl"`
	Size      float64           `json:"size"` // position size in USDT
	Layer     Layer             `json:"layer"`
	Snapshot  IndicatorSnapshot `json:"snapshot"`
	Technical TechnicalVerdict  `json:"technical"`
	Sentiment *SentimentVerdict `json:"sentiment,omitempty"` // set only for escalated alerts
	CreatedAt time.Time         `json:"created_at"`
}

// SignalRecord is the persisted trace of an emitted alert.
type SignalRecord struct {
	ID         int64
	Symbol     string
	Direction  Side
	Entry      float64
	TP         float64
	SL         float64
	Confidence int
	Escalated  bool
	Reason     string
	CreatedAt  time.Time
}

// DailyUsage holds the rate-limiter counters for one local calendar day.
// Day is formatted as 2006-01-02 and the row is invalidated on date change.
type DailyUsage struct {
	Day         string
	Calls       int
	Escalations int
	SpendUSD    float64
}
