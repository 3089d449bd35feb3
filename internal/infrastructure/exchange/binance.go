package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/domain"
)

const (
	BinanceBaseURL = "https://fapi.binance.com"
	BinanceWSURL   = "wss://fstream.binance.com/ws"

	reconnectMin = 1 * time.Second
	reconnectMax = 60 * time.Second
)

// BinanceFeed maintains a sliding window of futures klines for one symbol.
// It backfills over REST, then keeps the window current from the kline
// websocket stream: the still-open bar is replaced in place and appended
// once the exchange marks it closed.
type BinanceFeed struct {
	symbol   string
	interval string
	baseURL  string
	wsURL    string
	client   *http.Client
	logger   *zap.Logger

	mu        sync.Mutex
	window    *domain.Window
	callbacks []func([]domain.Candle)
	conn      *websocket.Conn
	closed    bool
}

func NewBinanceFeed(symbol, interval string, windowSize int, baseURL, wsURL string, logger *zap.Logger) *BinanceFeed {
	if baseURL == "" {
		baseURL = BinanceBaseURL
	}
	if wsURL == "" {
		wsURL = BinanceWSURL
	}
	return &BinanceFeed{
		symbol:   strings.ToUpper(symbol),
		interval: interval,
		baseURL:  baseURL,
		wsURL:    wsURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		window:   domain.NewWindow(windowSize),
	}
}

// OnWindow registers a callback invoked with a copy of the full window on
// every kline update after backfill.
func (f *BinanceFeed) OnWindow(cb func([]domain.Candle)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, cb)
}

// Backfill loads the most recent closed klines over REST so the engine has
// a full window before the stream starts.
func (f *BinanceFeed) Backfill(ctx context.Context) error {
	limit := f.window.Capacity()
	url := fmt.Sprintf("%s/fapi/v1/klines?symbol=%s&interval=%s&limit=%d",
		f.baseURL, f.symbol, f.interval, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("klines request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("klines request: %s", string(body))
	}

	// Binance kline rows are positional arrays of mixed types.
	var rows [][]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("klines parse: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range rows {
		c, err := parseKlineRow(row)
		if err != nil {
			return err
		}
		f.window.Append(c)
	}
	f.logger.Info("backfill complete",
		zap.String("symbol", f.symbol),
		zap.Int("candles", f.window.Len()))
	return nil
}

func parseKlineRow(row []interface{}) (domain.Candle, error) {
	if len(row) < 6 {
		return domain.Candle{}, fmt.Errorf("kline row too short: %d fields", len(row))
	}
	openTime, ok := row[0].(float64)
	if !ok {
		return domain.Candle{}, fmt.Errorf("kline open time not numeric")
	}
	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := row[i].(string)
		if !ok {
			return domain.Candle{}, fmt.Errorf("kline field %d not a string", i)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		vals[i-1] = v
	}
	return domain.Candle{
		OpenTime: int64(openTime),
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}

type klineEvent struct {
	Kline struct {
		OpenTime int64  `json:"t"`
		Open     string `json:"o"`
		High     string `json:"h"`
		Low      string `json:"l"`
		Close    string `json:"c"`
		Volume   string `json:"v"`
		Closed   bool   `json:"x"`
	} `json:"k"`
}

// Stream connects to the kline websocket and keeps the window current until
// the context is cancelled or Close is called. Connection drops are retried
// with exponential backoff.
func (f *BinanceFeed) Stream(ctx context.Context) error {
	backoff := reconnectMin
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.isClosed() {
			return nil
		}

		err := f.streamOnce(ctx)
		if err == nil || f.isClosed() || ctx.Err() != nil {
			return ctx.Err()
		}

		f.logger.Warn("stream disconnected",
			zap.Error(err),
			zap.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

func (f *BinanceFeed) streamOnce(ctx context.Context) error {
	url := fmt.Sprintf("%s/%s@kline_%s", f.wsURL, strings.ToLower(f.symbol), f.interval)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}

	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	defer func() {
		conn.Close()
		f.mu.Lock()
		f.conn = nil
		f.mu.Unlock()
	}()

	f.logger.Info("stream connected", zap.String("symbol", f.symbol))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("ws read: %w", err)
		}

		var ev klineEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			f.logger.Warn("kline parse failed", zap.Error(err))
			continue
		}
		if ev.Kline.OpenTime == 0 {
			continue
		}

		c, err := parseKlineEvent(ev)
		if err != nil {
			f.logger.Warn("kline values malformed", zap.Error(err))
			continue
		}

		f.mu.Lock()
		if f.window.Len() > 0 && f.window.Last().OpenTime == c.OpenTime {
			f.window.Replace(c)
		} else {
			f.window.Append(c)
		}
		candles := f.window.Candles()
		callbacks := make([]func([]domain.Candle), len(f.callbacks))
		copy(callbacks, f.callbacks)
		f.mu.Unlock()

		for _, cb := range callbacks {
			cb(candles)
		}
	}
}

func parseKlineEvent(ev klineEvent) (domain.Candle, error) {
	fields := []string{ev.Kline.Open, ev.Kline.High, ev.Kline.Low, ev.Kline.Close, ev.Kline.Volume}
	vals := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Candle{}, err
		}
		vals[i] = v
	}
	return domain.Candle{
		OpenTime: ev.Kline.OpenTime,
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}

func (f *BinanceFeed) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Close stops the stream. Safe to call more than once.
func (f *BinanceFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}
