package repository

import (
	"context"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/ml"
)

// MarketDataSource supplies candles and live quotes for a symbol.
// Implementations are backed by an exchange's public market-data API.
type MarketDataSource interface {
	GetCandles(ctx context.Context, symbol string, interval models.Interval, limit int) ([]models.Candle, error)
	GetLatestPrice(ctx context.Context, symbol string) (float64, error)
	GetTicker24h(ctx context.Context, symbol string) (*models.Ticker24h, error)
}

// QuoteStream pushes live quotes from an exchange stream.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// ModelStore persists trained per-symbol artifacts.
type ModelStore interface {
	Exists(symbol string) bool
	Save(m *ml.TrainedModel) error
	Load(symbol string) (*ml.TrainedModel, error)
	Delete(symbol string) error
}

// SignalPublisher emits finished predictions to downstream consumers.
type SignalPublisher interface {
	PublishPrediction(ctx context.Context, p *models.Prediction) error
	Close() error
}

// Metrics records operational counters for the pipeline.
type Metrics interface {
	RecordPrediction(symbol string, recommendation string)
	RecordTraining(symbol string, model string, seconds float64)
	RecordModelCacheHit(symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
