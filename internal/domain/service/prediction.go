package service

import (
	"context"

	"CoinPulse/internal/domain/models"
)

// Trainer fits and caches per-symbol price regressors.
type Trainer interface {
	// Train returns the symbol's trained model report. When force is false and
	// a persisted artifact pair exists, it is loaded without refetching data.
	Train(ctx context.Context, symbol string, force bool) (*models.TrainingReport, error)
}

// Predictor produces forecasts and derived analyses.
type Predictor interface {
	Predict(ctx context.Context, symbol string, horizonHours int) (*models.Prediction, error)
	Analyze(ctx context.Context, symbol string) (*models.TechnicalSummary, error)
	MarketSentiment(ctx context.Context, symbols []string) (*models.MarketSentiment, error)
}

// NewsProvider fetches crypto news with keyword sentiment attached.
type NewsProvider interface {
	LatestNews(ctx context.Context, limit int) ([]models.NewsArticle, error)
	MarketSummary(ctx context.Context) (*models.NewsSummary, error)
}
