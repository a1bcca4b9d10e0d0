package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/pkg/cache"
	pkghttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
)

const (
	DefaultBaseURL = "https://api.binance.com"

	// Binance weights REST calls; a conservative token bucket stays well
	// under the public 1200 weight/minute ceiling.
	restBucketKey      = "binance_rest"
	restBucketCapacity = 10
	restRefillPerSec   = 10

	defaultCandleTTL = 60 * time.Second
	defaultPriceTTL  = 5 * time.Second
	defaultTickerTTL = 30 * time.Second
)

// Client is a MarketDataSource over Binance's public REST API with a
// read-through cache in front of every endpoint.
type Client struct {
	http      *pkghttp.Client
	baseURL   string
	cache     cache.Service
	limiter   *ratelimit.Limiter
	log       *logger.Logger
	candleTTL time.Duration
	priceTTL  time.Duration
	tickerTTL time.Duration
}

var _ drepo.MarketDataSource = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

func WithCandleTTL(ttl time.Duration) Option {
	return func(c *Client) { c.candleTTL = ttl }
}

// NewClient creates a Binance market-data client.
func NewClient(httpClient *pkghttp.Client, cacheSvc cache.Service, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:      httpClient,
		baseURL:   DefaultBaseURL,
		cache:     cacheSvc,
		limiter:   ratelimit.New(),
		log:       log,
		candleTTL: defaultCandleTTL,
		priceTTL:  defaultPriceTTL,
		tickerTTL: defaultTickerTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCandles fetches up to limit klines for the symbol and interval.
// Recently fetched series come from cache to spare the exchange quota.
func (c *Client) GetCandles(ctx context.Context, symbol string, interval models.Interval, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 500
	}
	key := fmt.Sprintf("candles:%s:%s:%d", symbol, interval, limit)

	var cached []models.Candle
	if err := c.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	var raw [][]interface{}
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {string(interval)},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, row := range raw {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
		}
		candles = append(candles, candle)
	}

	if len(candles) > 0 {
		if err := c.cache.Set(ctx, key, candles, c.candleTTL); err != nil {
			c.log.Warn("cache candles failed", logger.String("key", key), logger.Error(err))
		}
	}
	return candles, nil
}

// GetLatestPrice returns the current traded price for the symbol.
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	key := "price:" + symbol
	var cached float64
	if err := c.cache.Get(ctx, key, &cached); err == nil && cached > 0 {
		return cached, nil
	}

	if err := c.throttle(ctx); err != nil {
		return 0, err
	}

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.baseURL + "/api/v3/ticker/price",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("binance price %s: %w", symbol, err)
	}

	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("binance price %s: parse %q: %w", symbol, resp.Price, err)
	}

	if err := c.cache.Set(ctx, key, price, c.priceTTL); err != nil {
		c.log.Warn("cache price failed", logger.String("key", key), logger.Error(err))
	}
	return price, nil
}

// GetTicker24h returns the 24-hour rolling window stats for the symbol.
func (c *Client) GetTicker24h(ctx context.Context, symbol string) (*models.Ticker24h, error) {
	key := "ticker24h:" + symbol
	var cached models.Ticker24h
	if err := c.cache.Get(ctx, key, &cached); err == nil && cached.Symbol != "" {
		return &cached, nil
	}

	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	var resp struct {
		Symbol             string `json:"symbol"`
		LastPrice          string `json:"lastPrice"`
		PriceChange        string `json:"priceChange"`
		PriceChangePercent string `json:"priceChangePercent"`
		HighPrice          string `json:"highPrice"`
		LowPrice           string `json:"lowPrice"`
		Volume             string `json:"volume"`
		QuoteVolume        string `json:"quoteVolume"`
	}
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.baseURL + "/api/v3/ticker/24hr",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("binance ticker24h %s: %w", symbol, err)
	}

	ticker := &models.Ticker24h{Symbol: resp.Symbol}
	for _, f := range []struct {
		dst *float64
		src string
	}{
		{&ticker.LastPrice, resp.LastPrice},
		{&ticker.PriceChange, resp.PriceChange},
		{&ticker.ChangePercent, resp.PriceChangePercent},
		{&ticker.High, resp.HighPrice},
		{&ticker.Low, resp.LowPrice},
		{&ticker.Volume, resp.Volume},
		{&ticker.QuoteVolume, resp.QuoteVolume},
	} {
		v, err := strconv.ParseFloat(f.src, 64)
		if err != nil {
			return nil, fmt.Errorf("binance ticker24h %s: parse %q: %w", symbol, f.src, err)
		}
		*f.dst = v
	}

	if err := c.cache.Set(ctx, key, ticker, c.tickerTTL); err != nil {
		c.log.Warn("cache ticker failed", logger.String("key", key), logger.Error(err))
	}
	return ticker, nil
}

// throttle blocks until a REST token is available or the context ends.
func (c *Client) throttle(ctx context.Context) error {
	for !c.limiter.Allow(restBucketKey, restBucketCapacity, restRefillPerSec) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

// parseKline decodes one kline row. Binance sends a mixed array: the open
// time is a number, prices and volume are strings.
func parseKline(row []interface{}) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("kline row has %d fields", len(row))
	}
	openTime, ok := row[0].(float64)
	if !ok {
		return models.Candle{}, fmt.Errorf("kline open time %T", row[0])
	}

	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := row[i].(string)
		if !ok {
			return models.Candle{}, fmt.Errorf("kline field %d is %T", i, row[i])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("kline field %d: parse %q: %w", i, s, err)
		}
		vals[i-1] = v
	}

	return models.Candle{
		OpenTime: time.UnixMilli(int64(openTime)).UTC(),
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}
