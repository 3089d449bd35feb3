package domain

type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
	// SideNone marks a technical verdict that declined the setup outright.
	SideNone Side = "SKIP"
)

type AnalysisMode string

const (
	ModeTechnical AnalysisMode = "TECHNICAL"
	ModeSentiment AnalysisMode = "SENTIMENT"
)

// TechnicalQuery carries the technical-only context for the first analysis
// stage: current price, the layer descriptor, and the indicator snapshot.
type TechnicalQuery struct {
	Symbol    string
	Price     float64
	Layer     Layer
	Snapshot  IndicatorSnapshot
	OHLCVNote string // summary of the most recent candles for the prompt
}

// SentimentQuery carries the borderline technical verdict into the second,
// enriched analysis stage.
type SentimentQuery struct {
	Symbol  string
	Price   float64
	Verdict TechnicalVerdict
}

// TechnicalVerdict is the stage-1 analysis result. Confidence is 0-100;
// anything outside that range is a malformed verdict.
type TechnicalVerdict struct {
	Direction  Side    `json:"direction"`
	Confidence int     `json:"confidence"`
	TP         float64 `json:"tp"`
	SL         float64 `json:"sl"`
	Reason     string  `json:"reason"`
}

type Sentiment string

const (
	SentimentBullish Sentiment = "BULLISH"
	SentimentBearish Sentiment = "BEARISH"
	SentimentNeutral Sentiment = "NEUTRAL"
)

// SentimentVerdict is the stage-2 analysis result.
type SentimentVerdict struct {
	TakeTrade  bool      `json:"take_trade"`
	Sentiment  Sentiment `json:"sentiment"`
	BuzzScore  int       `json:"buzz_score"`
	BTCStatus  string    `json:"btc_status"` // UP, DOWN or FLAT
	WhaleAlert bool      `json:"whale_alert"`
	Reason     string    `json:"reason"`
}
