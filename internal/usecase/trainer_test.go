package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/ml"
)

func newTrainer(t *testing.T, src *fakeSource) (*TrainingService, *fakeStore, *fakeMetrics) {
	t.Helper()
	store := newFakeStore()
	metrics := &fakeMetrics{}
	svc := NewTrainingService(src, store, NewModelCache(), metrics, testLogger(t))
	return svc, store, metrics
}

func TestTrainProducesModel(t *testing.T) {
	src := &fakeSource{candles: trendingCandles(500, 100, 0.5)}
	svc, store, _ := newTrainer(t, src)

	rep, err := svc.Train(context.Background(), "BTCUSDT", false)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", rep.Symbol)
	assert.False(t, rep.FromCache)
	assert.Greater(t, rep.Samples, 50)
	assert.NotEmpty(t, rep.Model)
	assert.Equal(t, 1, store.saveCount(), "winner persisted exactly once")
}

func TestTrainLinearTrendPicksLinearModel(t *testing.T) {
	src := &fakeSource{candles: linearCandles(500, 100)}
	svc, _, _ := newTrainer(t, src)

	rep, err := svc.Train(context.Background(), "BTCUSDT", false)
	require.NoError(t, err)
	assert.Equal(t, ml.ModelLinear, rep.Model, "trees cannot out-fit an exact linear trend")

	predictor := NewPredictionService(src, svc, &fakePublisher{}, &fakeMetrics{}, testLogger(t))
	pred, err := predictor.Predict(context.Background(), "BTCUSDT", 24)
	require.NoError(t, err)
	assert.InDelta(t, pred.CurrentPrice+1, pred.PredictedPrice, 0.2,
		"next close on a +1/candle trend is current+1")
}

func TestTrainSelectionReproducible(t *testing.T) {
	candles := trendingCandles(500, 100, 0.5)

	first, _, _ := newTrainer(t, &fakeSource{candles: candles})
	second, _, _ := newTrainer(t, &fakeSource{candles: candles})

	repA, err := first.Train(context.Background(), "BTCUSDT", false)
	require.NoError(t, err)
	repB, err := second.Train(context.Background(), "BTCUSDT", false)
	require.NoError(t, err)

	assert.Equal(t, repA.Model, repB.Model, "same winner on identical input")
	assert.Equal(t, repA.ValidationMSE, repB.ValidationMSE, "selection is seeded, MSE is bit-identical")
	assert.Equal(t, repA.Samples, repB.Samples)
}

func TestTrainSecondCallHitsCache(t *testing.T) {
	src := &fakeSource{candles: steadyCandles(500, 300)}
	svc, _, metrics := newTrainer(t, src)

	_, err := svc.Train(context.Background(), "ETHUSDT", false)
	require.NoError(t, err)
	fetches := src.callCount()

	rep, err := svc.Train(context.Background(), "ETHUSDT", false)
	require.NoError(t, err)

	assert.True(t, rep.FromCache)
	assert.Equal(t, fetches, src.callCount(), "cache hit fetches nothing")
	assert.Equal(t, 1, metrics.get(&metrics.cacheHits))
}

func TestTrainLoadsPersistedArtifact(t *testing.T) {
	src := &fakeSource{candles: steadyCandles(500, 300)}
	svc, store, _ := newTrainer(t, src)

	// Fit once, then start a fresh service sharing the same store: it must
	// come up from disk without refitting.
	_, err := svc.Train(context.Background(), "SOLUSDT", false)
	require.NoError(t, err)

	metrics2 := &fakeMetrics{}
	src2 := &fakeSource{candles: steadyCandles(500, 300)}
	svc2 := NewTrainingService(src2, store, NewModelCache(), metrics2, testLogger(t))

	rep, err := svc2.Train(context.Background(), "SOLUSDT", false)
	require.NoError(t, err)
	assert.True(t, rep.FromCache)
	assert.Equal(t, 0, src2.callCount(), "artifact load needs no market data")
}

func TestTrainForceRefits(t *testing.T) {
	src := &fakeSource{candles: steadyCandles(500, 300)}
	svc, store, _ := newTrainer(t, src)

	_, err := svc.Train(context.Background(), "BTCUSDT", false)
	require.NoError(t, err)
	before := src.callCount()

	rep, err := svc.Train(context.Background(), "BTCUSDT", true)
	require.NoError(t, err)

	assert.False(t, rep.FromCache)
	assert.Greater(t, src.callCount(), before, "force refetches market data")
	assert.Equal(t, 2, store.saveCount())
}

func TestTrainTooFewCandles(t *testing.T) {
	src := &fakeSource{candles: trendingCandles(80, 100, 0.5)}
	svc, store, _ := newTrainer(t, src)

	_, err := svc.Train(context.Background(), "BTCUSDT", false)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
	assert.Equal(t, 0, store.saveCount(), "no artifact on failed training")
}

func TestTrainSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("exchange down")}
	svc, _, metrics := newTrainer(t, src)

	_, err := svc.Train(context.Background(), "BTCUSDT", false)
	assert.Error(t, err)
	assert.Equal(t, 1, metrics.get(&metrics.errors))
}

func TestConcurrentTrainFitsOnce(t *testing.T) {
	src := &fakeSource{candles: steadyCandles(500, 300), delay: 20 * time.Millisecond}
	svc, store, _ := newTrainer(t, src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Train(context.Background(), "BTCUSDT", false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.saveCount(), "one fit despite concurrent callers")
	assert.Equal(t, 1, src.callCount())
}

func TestModelCacheFillBlocksReaders(t *testing.T) {
	cache := NewModelCache()
	src := &fakeSource{candles: steadyCandles(500, 300)}
	store := newFakeStore()
	svc := NewTrainingService(src, store, cache, &fakeMetrics{}, testLogger(t))

	_, err := svc.Train(context.Background(), "BTCUSDT", false)
	require.NoError(t, err)

	m, ok := cache.Get("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, "BTCUSDT", m.Symbol)

	cache.Invalidate("BTCUSDT")
	_, ok = cache.Get("BTCUSDT")
	assert.False(t, ok)
}
