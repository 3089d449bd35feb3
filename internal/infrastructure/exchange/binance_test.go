package exchange

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dijiclick/pepebot/internal/domain"
)

func TestBinanceFeed_Backfill(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/klines", r.URL.Path)
		assert.Equal(t, "1000PEPEUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		fmt.Fprint(w, `[
			[1700000000000, "0.00000820", "0.00000825", "0.00000818", "0.00000822", "1000000", 1700000059999, "8.2", 100, "500000", "4.1", "0"],
			[1700000060000, "0.00000822", "0.00000828", "0.00000821", "0.00000826", "1200000", 1700000119999, "9.9", 120, "600000", "5.0", "0"]
		]`)
	}))
	defer srv.Close()

	feed := NewBinanceFeed("1000pepeusdt", "1m", 60, srv.URL, "", zap.NewNop())
	require.NoError(t, feed.Backfill(t.Context()))

	candles := feed.window.Candles()
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1700000000000), candles[0].OpenTime)
	assert.Equal(t, 0.00000822, candles[0].Close)
	assert.Equal(t, 0.00000828, candles[1].High)
	assert.Equal(t, 1200000.0, candles[1].Volume)
}

func TestBinanceFeed_BackfillRejectsMalformedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[1700000000000, "not-a-number", "1", "1", "1", "1"]]`)
	}))
	defer srv.Close()

	feed := NewBinanceFeed("1000PEPEUSDT", "1m", 60, srv.URL, "", zap.NewNop())
	require.Error(t, feed.Backfill(t.Context()))
}

func klineMessage(openTime int64, close string, closed bool) string {
	return fmt.Sprintf(`{"e":"kline","k":{"t":%d,"o":"0.00000820","h":"0.00000825","l":"0.00000818","c":%q,"v":"1000000","x":%t}}`,
		openTime, close, closed)
}

func TestBinanceFeed_StreamReplacesOpenCandle(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		msgs := []string{
			klineMessage(1700000000000, "0.00000821", false),
			klineMessage(1700000000000, "0.00000823", true),
			klineMessage(1700000060000, "0.00000824", false),
		}
		for _, m := range msgs {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(m)))
		}
		// Hold the connection open until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	feed := NewBinanceFeed("1000PEPEUSDT", "1m", 60, "", wsURL, zap.NewNop())

	windows := make(chan []domain.Candle, 8)
	feed.OnWindow(func(cs []domain.Candle) { windows <- cs })

	done := make(chan error, 1)
	go func() { done <- feed.Stream(t.Context()) }()

	var got [][]domain.Candle
	for len(got) < 3 {
		select {
		case w := <-windows:
			got = append(got, w)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for window updates")
		}
	}

	require.NoError(t, feed.Close())
	require.NoError(t, <-done)

	// Same open time updates in place, the next bar appends.
	require.Len(t, got[0], 1)
	assert.Equal(t, 0.00000821, got[0][0].Close)
	require.Len(t, got[1], 1)
	assert.Equal(t, 0.00000823, got[1][0].Close)
	require.Len(t, got[2], 2)
	assert.Equal(t, int64(1700000060000), got[2][1].OpenTime)
}
