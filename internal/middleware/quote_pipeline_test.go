package middleware

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

type sinkSpy struct {
	mu    sync.Mutex
	seen  []*models.Quote
	fail  error
	calls int
}

func (s *sinkSpy) Process(_ context.Context, q *models.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil {
		return s.fail
	}
	s.seen = append(s.seen, q)
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordPrediction(string, string)        {}
func (nopMetrics) RecordTraining(string, string, float64) {}
func (nopMetrics) RecordModelCacheHit(string)             {}
func (nopMetrics) RecordError(string)                     {}
func (nopMetrics) RecordLastPrice(string, float64)        {}
func (nopMetrics) RecordLatency(string, float64)          {}

func TestPipelineForwardsValidQuote(t *testing.T) {
	sink := &sinkSpy{}
	pipe := NewQuotePipeline(sink, nopMetrics{})

	q := &models.Quote{Symbol: "BTCUSDT", Price: 68000, Timestamp: time.Now()}
	require.NoError(t, pipe.Process(context.Background(), q))
	assert.Len(t, sink.seen, 1)
}

func TestPipelineRejectsInvalidQuotes(t *testing.T) {
	sink := &sinkSpy{}
	pipe := NewQuotePipeline(sink, nopMetrics{})

	assert.Error(t, pipe.Process(context.Background(), nil))
	assert.Error(t, pipe.Process(context.Background(), &models.Quote{Price: 1}))
	assert.Error(t, pipe.Process(context.Background(), &models.Quote{Symbol: "BTCUSDT", Price: 0}))
	assert.Empty(t, sink.seen)
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	sink := &sinkSpy{}
	pipe := NewQuotePipeline(sink, nopMetrics{}, WithMaxRPS(1))

	now := time.Now()
	btc := &models.Quote{Symbol: "BTCUSDT", Price: 68000, Timestamp: now}
	eth := &models.Quote{Symbol: "ETHUSDT", Price: 3500, Timestamp: now}

	require.NoError(t, pipe.Process(context.Background(), btc))
	require.NoError(t, pipe.Process(context.Background(), btc)) // dropped, within window
	require.NoError(t, pipe.Process(context.Background(), eth)) // other symbol passes

	assert.Len(t, sink.seen, 2)
}

func TestPipelineWrapsDownstreamError(t *testing.T) {
	sink := &sinkSpy{fail: assert.AnError}
	pipe := NewQuotePipeline(sink, nopMetrics{})

	err := pipe.Process(context.Background(), &models.Quote{Symbol: "BTCUSDT", Price: 1, Timestamp: time.Now()})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
