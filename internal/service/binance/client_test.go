package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/cache"
	pkghttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
)

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(pkghttp.NewClient(), cache.NewMemoryCache(), testLog(t), WithBaseURL(srv.URL))
	return c, srv
}

func TestGetCandles(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, `[
			[1717200000000, "68000.1", "68100.5", "67900.2", "68050.3", "123.45", 1717203599999, "0", 10, "0", "0", "0"],
			[1717203600000, "68050.3", "68200.0", "68000.0", "68150.7", "98.76", 1717207199999, "0", 10, "0", "0", "0"]
		]`)
	}))

	candles, err := c.GetCandles(context.Background(), "BTCUSDT", models.Interval1h, 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.Equal(t, time.UnixMilli(1717200000000).UTC(), candles[0].OpenTime)
	assert.Equal(t, 68000.1, candles[0].Open)
	assert.Equal(t, 68100.5, candles[0].High)
	assert.Equal(t, 67900.2, candles[0].Low)
	assert.Equal(t, 68050.3, candles[0].Close)
	assert.Equal(t, 123.45, candles[0].Volume)
	assert.Equal(t, 68150.7, candles[1].Close)

	// Second call is served from cache.
	again, err := c.GetCandles(context.Background(), "BTCUSDT", models.Interval1h, 2)
	require.NoError(t, err)
	assert.Equal(t, candles, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGetCandlesMalformedRow(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[1717200000000, "bad", "1", "1", "1", "1"]]`)
	}))

	_, err := c.GetCandles(context.Background(), "BTCUSDT", models.Interval1h, 1)
	assert.Error(t, err)
}

func TestGetCandlesServerError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))

	_, err := c.GetCandles(context.Background(), "NOPEUSDT", models.Interval1h, 10)
	assert.Error(t, err)
}

func TestGetLatestPrice(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, `{"symbol":"ETHUSDT","price":"3500.42"}`)
	}))

	price, err := c.GetLatestPrice(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 3500.42, price)

	_, err = c.GetLatestPrice(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "price served from cache")
}

func TestGetTicker24h(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		fmt.Fprint(w, `{
			"symbol":"BTCUSDT","lastPrice":"68000.5","priceChange":"1200.5",
			"priceChangePercent":"1.80","highPrice":"68500.0","lowPrice":"66000.0",
			"volume":"12345.6","quoteVolume":"834000000.1"
		}`)
	}))

	ticker, err := c.GetTicker24h(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", ticker.Symbol)
	assert.Equal(t, 68000.5, ticker.LastPrice)
	assert.Equal(t, 1.80, ticker.ChangePercent)
	assert.Equal(t, 66000.0, ticker.Low)
	assert.Equal(t, 834000000.1, ticker.QuoteVolume)
}

func TestParseKlineShortRow(t *testing.T) {
	_, err := parseKline([]interface{}{1.0, "1", "1"})
	assert.Error(t, err)
}
