package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/domain"
)

const (
	DefaultBaseURL = "https://api.x.ai/v1"
	DefaultModel   = "grok-4"

	maxTokens   = 200
	temperature = 0.3
)

// GrokClient talks to the Grok chat-completions API (OpenAI-compatible).
// Stage 1 sends a technical-only prompt; stage 2 enables X search for the
// sentiment confirmation.
type GrokClient struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func NewGrokClient(baseURL, model, apiKey string, timeout time.Duration, logger *zap.Logger) *GrokClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &GrokClient{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatTool struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []chatTool    `json:"tools,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// AnalyzeTechnical runs the stage-1 screen. Transport failures come back as
// ErrAnalysisTransport, unusable responses as ErrMalformedVerdict.
func (g *GrokClient) AnalyzeTechnical(ctx context.Context, q domain.TechnicalQuery) (*domain.TechnicalVerdict, error) {
	content, err := g.complete(ctx, technicalPrompt(q), nil)
	if err != nil {
		return nil, err
	}
	verdict, err := parseTechnical(content, q.Price, q.Snapshot.ATR14)
	if err != nil {
		g.logger.Warn("technical verdict unparseable", zap.String("response", content))
		return nil, err
	}
	return verdict, nil
}

// AnalyzeSentiment runs the stage-2 confirmation with X search enabled.
func (g *GrokClient) AnalyzeSentiment(ctx context.Context, q domain.SentimentQuery) (*domain.SentimentVerdict, error) {
	content, err := g.complete(ctx, sentimentPrompt(q), []chatTool{{Type: "x_search"}})
	if err != nil {
		return nil, err
	}
	verdict, err := parseSentiment(content)
	if err != nil {
		g.logger.Warn("sentiment verdict unparseable", zap.String("response", content))
		return nil, err
	}
	return verdict, nil
}

func (g *GrokClient) complete(ctx context.Context, prompt string, tools []chatTool) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Tools:       tools,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisTransport, err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrAnalysisTransport, resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisTransport, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", domain.ErrMalformedVerdict)
	}
	return parsed.Choices[0].Message.Content, nil
}

func technicalPrompt(q domain.TechnicalQuery) string {
	return fmt.Sprintf(`You are an expert futures scalper. Analyze %s for a bounce trade.
Use ONLY technical analysis (no sentiment/news needed yet).

PRICE DATA
Current Price: %.8f
Near Layer: %s at %.8f (%.3f%% away)
Layer Strength: %d factors, %d touches

TECHNICAL DATA
OHLCV Summary (last 10 candles):
%s

ATR(14): %.8f
ADX: %.1f
Market Status: %s
Volume vs 20-bar avg: %.2fx

TASK
Decide if this is technically a good scalp setup.
Consider: layer strength, price action, volume, momentum.

RESPOND EXACTLY IN THIS FORMAT
DIRECTION: [LONG / SHORT / SKIP]
CONFIDENCE: [0-100]
TP: [price]
SL: [price]
REASON: [1 sentence]`,
		q.Symbol, q.Price,
		q.Layer.Side, q.Layer.PriceLevel, q.Layer.DistancePct,
		q.Layer.FactorCount, q.Layer.TouchCount,
		q.OHLCVNote,
		q.Snapshot.ATR14, q.Snapshot.ADX, q.Snapshot.Regime, q.Snapshot.VolumeRatio)
}

func sentimentPrompt(q domain.SentimentQuery) string {
	return fmt.Sprintf(`You are an expert futures scalper trading %s.
I have a borderline technical setup. Need sentiment confirmation.

SETUP SUMMARY
Direction: %s
Technical Confidence: %d%%
Entry: %.8f
TP: %.8f | SL: %.8f

SENTIMENT CHECK (Use X Search)
Please check:
- X/Twitter sentiment for this coin in the last hour (buzz score 0-100)
- Any whale mentions or large transfer alerts
- BTC price movement (alts follow BTC)
- Breaking crypto news affecting meme coins

TASK
Should I take this trade based on current sentiment?

RESPOND EXACTLY IN THIS FORMAT
TAKE_TRADE: [YES / NO]
SENTIMENT: [BULLISH / BEARISH / NEUTRAL]
BUZZ_SCORE: [0-100]
BTC_STATUS: [UP / DOWN / FLAT]
WHALE_ALERT: [YES / NO]
REASON: [1 sentence]`,
		q.Symbol,
		q.Verdict.Direction, q.Verdict.Confidence,
		q.Price, q.Verdict.TP, q.Verdict.SL)
}
