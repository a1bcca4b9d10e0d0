package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

func newPredictor(t *testing.T, src *fakeSource) (*PredictionService, *fakePublisher, *fakeMetrics) {
	t.Helper()
	metrics := &fakeMetrics{}
	trainer := NewTrainingService(src, newFakeStore(), NewModelCache(), metrics, testLogger(t))
	pub := &fakePublisher{}
	svc := NewPredictionService(src, trainer, pub, metrics, testLogger(t))
	return svc, pub, metrics
}

func TestPredictSteadyMarket(t *testing.T) {
	src := &fakeSource{candles: steadyCandles(500, 42000)}
	svc, pub, metrics := newPredictor(t, src)

	pred, err := svc.Predict(context.Background(), "BTCUSDT", 24)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", pred.Symbol)
	assert.Equal(t, 42000.0, pred.CurrentPrice)
	assert.InDelta(t, 42000.0, pred.PredictedPrice, 1)
	assert.InDelta(t, 0, pred.ChangePercent, 0.01)
	assert.Equal(t, models.Hold, pred.Recommendation)
	assert.Equal(t, 90.0, pred.Confidence, "zero volatility pins confidence at the base")
	assert.Equal(t, 24, pred.HorizonHours)
	assert.Equal(t, 24*time.Hour, pred.TargetTime.Sub(pred.GeneratedAt))

	assert.Equal(t, 1, pub.published())
	assert.Equal(t, 1, metrics.get(&metrics.predictions))
}

func TestPredictDefaultHorizon(t *testing.T) {
	src := &fakeSource{candles: steadyCandles(500, 100)}
	svc, _, _ := newPredictor(t, src)

	pred, err := svc.Predict(context.Background(), "ETHUSDT", 0)
	require.NoError(t, err)
	assert.Equal(t, 24, pred.HorizonHours)
}

func TestPredictTrendingMarket(t *testing.T) {
	src := &fakeSource{candles: trendingCandles(500, 100, 0.5)}
	svc, _, _ := newPredictor(t, src)

	pred, err := svc.Predict(context.Background(), "BTCUSDT", 24)
	require.NoError(t, err)

	assert.Greater(t, pred.PredictedPrice, 0.0)
	assert.GreaterOrEqual(t, pred.Confidence, 50.0)
	assert.LessOrEqual(t, pred.Confidence, 95.0)
	assert.Contains(t, []models.Recommendation{
		models.StrongBuy, models.Buy, models.Hold, models.Sell, models.StrongSell,
	}, pred.Recommendation)
}

func TestPredictInsufficientHistory(t *testing.T) {
	src := &fakeSource{candles: steadyCandles(30, 100)}
	svc, pub, _ := newPredictor(t, src)

	_, err := svc.Predict(context.Background(), "BTCUSDT", 24)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
	assert.Equal(t, 0, pub.published())
}

func TestAnalyzeSummary(t *testing.T) {
	src := &fakeSource{candles: trendingCandles(500, 100, 0.5)}
	svc, _, _ := newPredictor(t, src)

	sum, err := svc.Analyze(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", sum.Symbol)
	assert.Greater(t, sum.CurrentPrice, 0.0)
	assert.False(t, models.Missing(sum.RSI))
	assert.Greater(t, sum.Resistance, sum.Support)
	assert.Equal(t, "uptrend", sum.Trend)
	assert.NotEqual(t, "unknown", sum.BBPosition)
}

func TestMarketSentimentSkipsFailingSymbols(t *testing.T) {
	src := &fakeSource{candles: steadyCandles(500, 100)}
	svc, _, _ := newPredictor(t, src)

	// Both symbols resolve through the same fake; sentiment covers both.
	sent, err := svc.MarketSentiment(context.Background(), []string{"BTCUSDT", "ETHUSDT"})
	require.NoError(t, err)
	assert.Len(t, sent.Predictions, 2)
	assert.Equal(t, "neutral", sent.Label)
	assert.InDelta(t, 0, sent.AvgChangePercent, 0.01)
}

func TestMarketSentimentAllFail(t *testing.T) {
	src := &fakeSource{err: errors.New("exchange down")}
	svc, _, _ := newPredictor(t, src)

	_, err := svc.MarketSentiment(context.Background(), []string{"BTCUSDT"})
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
}
