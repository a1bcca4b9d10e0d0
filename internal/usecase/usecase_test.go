package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/ml"
	"CoinPulse/pkg/logger"
)

// fakeSource serves the tail of a prepared candle series and counts calls.
type fakeSource struct {
	mu      sync.Mutex
	candles []models.Candle
	err     error
	calls   int
	delay   time.Duration
}

func (f *fakeSource) GetCandles(ctx context.Context, symbol string, interval models.Interval, limit int) ([]models.Candle, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	if limit >= len(f.candles) {
		return f.candles, nil
	}
	return f.candles[len(f.candles)-limit:], nil
}

func (f *fakeSource) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return models.LastClose(f.candles), nil
}

func (f *fakeSource) GetTicker24h(ctx context.Context, symbol string) (*models.Ticker24h, error) {
	return &models.Ticker24h{Symbol: symbol, LastPrice: models.LastClose(f.candles)}, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeStore keeps artifacts in memory.
type fakeStore struct {
	mu     sync.Mutex
	models map[string]*ml.TrainedModel
	saves  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{models: make(map[string]*ml.TrainedModel)}
}

func (f *fakeStore) Exists(symbol string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.models[symbol]
	return ok
}

func (f *fakeStore) Save(m *ml.TrainedModel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models[m.Symbol] = m
	f.saves++
	return nil
}

func (f *fakeStore) Load(symbol string) (*ml.TrainedModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.models[symbol]
	if !ok {
		return nil, fmt.Errorf("no artifact for %s: %w", symbol, models.ErrModelUnavailable)
	}
	return m, nil
}

func (f *fakeStore) Delete(symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.models, symbol)
	return nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

// fakeMetrics counts recorded events.
type fakeMetrics struct {
	mu          sync.Mutex
	cacheHits   int
	trainings   int
	predictions int
	errors      int
}

func (f *fakeMetrics) RecordPrediction(string, string) { f.bump(&f.predictions) }
func (f *fakeMetrics) RecordTraining(string, string, float64) {
	f.bump(&f.trainings)
}
func (f *fakeMetrics) RecordModelCacheHit(string)      { f.bump(&f.cacheHits) }
func (f *fakeMetrics) RecordError(string)              { f.bump(&f.errors) }
func (f *fakeMetrics) RecordLastPrice(string, float64) {}
func (f *fakeMetrics) RecordLatency(string, float64)   {}

func (f *fakeMetrics) bump(p *int) {
	f.mu.Lock()
	*p++
	f.mu.Unlock()
}

func (f *fakeMetrics) get(p *int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *p
}

// fakePublisher records published predictions.
type fakePublisher struct {
	mu    sync.Mutex
	preds []*models.Prediction
}

func (f *fakePublisher) PublishPrediction(ctx context.Context, p *models.Prediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preds = append(f.preds, p)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) published() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.preds)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func trendingCandles(n int, start, step float64) []models.Candle {
	out := make([]models.Candle, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		p := start + float64(i)*step + float64(i%5)*0.2
		out[i] = models.Candle{
			OpenTime: base.Add(time.Duration(i) * time.Hour),
			Open:     p - 0.3, High: p + 0.8, Low: p - 0.9, Close: p,
			Volume: 10000 + float64(i%11)*50,
		}
	}
	return out
}

func linearCandles(n int, start float64) []models.Candle {
	out := make([]models.Candle, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		p := start + float64(i)
		out[i] = models.Candle{
			OpenTime: base.Add(time.Duration(i) * time.Hour),
			Open:     p, High: p + 0.5, Low: p - 0.5, Close: p,
			Volume: 10000,
		}
	}
	return out
}

func steadyCandles(n int, price float64) []models.Candle {
	out := make([]models.Candle, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = models.Candle{
			OpenTime: base.Add(time.Duration(i) * time.Hour),
			Open:     price, High: price, Low: price, Close: price,
			Volume: 10000,
		}
	}
	return out
}
