package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/internal/services/features"
	"CoinPulse/internal/services/indicators"
	"CoinPulse/pkg/logger"
)

const (
	predictCandleLimit = 100
	predictMinCandles  = 50
	defaultHorizonHrs  = 24
	confidenceWindow   = 24
	confidenceFloor    = 50.0
	confidenceCeiling  = 95.0
)

// PredictionService turns a trained model and fresh candles into forecasts,
// technical snapshots and watch-list sentiment.
type PredictionService struct {
	source    domrepo.MarketDataSource
	trainer   *TrainingService
	publisher domrepo.SignalPublisher
	engine    *indicators.Engine
	builder   *features.Builder
	metrics   domrepo.Metrics
	log       *logger.Logger
}

var _ domsvc.Predictor = (*PredictionService)(nil)

func NewPredictionService(
	source domrepo.MarketDataSource,
	trainer *TrainingService,
	publisher domrepo.SignalPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *PredictionService {
	return &PredictionService{
		source:    source,
		trainer:   trainer,
		publisher: publisher,
		engine:    indicators.NewEngine(),
		builder:   features.NewBuilder(),
		metrics:   metrics,
		log:       log,
	}
}

// Predict forecasts the symbol's price over the horizon. The model is trained
// on demand; each call recomputes the forecast from fresh candles.
func (s *PredictionService) Predict(ctx context.Context, symbol string, horizonHours int) (*models.Prediction, error) {
	if horizonHours <= 0 {
		horizonHours = defaultHorizonHrs
	}

	m, err := s.trainer.Model(ctx, symbol)
	if err != nil {
		return nil, err
	}

	candles, err := s.fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	series, err := s.engine.Compute(candles)
	if err != nil {
		return nil, fmt.Errorf("compute indicators for %s: %w", symbol, err)
	}
	row, err := s.builder.LatestFeatureRow(series)
	if err != nil {
		return nil, fmt.Errorf("feature row for %s: %w", symbol, err)
	}

	predicted, err := m.PredictRow(row, models.FeatureColumns())
	if err != nil {
		s.metrics.RecordError("predict")
		return nil, err
	}

	current := models.LastClose(candles)
	if current == 0 {
		return nil, fmt.Errorf("zero last close for %s: %w", symbol, models.ErrDataUnavailable)
	}
	change := (predicted - current) / current * 100

	now := time.Now().UTC()
	pred := &models.Prediction{
		Symbol:         symbol,
		CurrentPrice:   current,
		PredictedPrice: predicted,
		ChangePercent:  change,
		Confidence:     confidenceFrom(candles),
		Recommendation: models.RecommendationFor(change),
		Model:          m.Model.Name(),
		GeneratedAt:    now,
		TargetTime:     now.Add(time.Duration(horizonHours) * time.Hour),
		HorizonHours:   horizonHours,
	}

	s.metrics.RecordPrediction(symbol, string(pred.Recommendation))
	s.metrics.RecordLastPrice(symbol, current)

	if err := s.publisher.PublishPrediction(ctx, pred); err != nil {
		s.log.Warn("publish prediction failed",
			logger.String("symbol", symbol), logger.Error(err))
	}
	return pred, nil
}

// Analyze summarizes the latest indicator row for a symbol.
func (s *PredictionService) Analyze(ctx context.Context, symbol string) (*models.TechnicalSummary, error) {
	candles, err := s.fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	series, err := s.engine.Compute(candles)
	if err != nil {
		return nil, fmt.Errorf("compute indicators for %s: %w", symbol, err)
	}

	last := series.Len() - 1
	at := func(col string) float64 {
		vals, ok := series.Column(col)
		if !ok || last >= len(vals) {
			return math.NaN()
		}
		return vals[last]
	}

	price := models.LastClose(candles)
	summary := &models.TechnicalSummary{
		Symbol:       symbol,
		CurrentPrice: price,
		RSI:          at(models.ColRSI),
		MACD:         at(models.ColMACD),
		Support:      at(models.ColSupport),
		Resistance:   at(models.ColResistance),
		BBPosition:   bbPosition(price, at(models.ColBBUpper), at(models.ColBBLower)),
		Trend:        trendOf(at(models.ColSMA7), at(models.ColSMA25)),
	}
	summary.Signals = signalsOf(summary, at(models.ColMACDSignal))
	return summary, nil
}

// MarketSentiment aggregates 24h forecasts across the watch-list, skipping
// symbols whose prediction fails.
func (s *PredictionService) MarketSentiment(ctx context.Context, symbols []string) (*models.MarketSentiment, error) {
	var preds []models.Prediction
	var sum float64
	for _, symbol := range symbols {
		p, err := s.Predict(ctx, symbol, defaultHorizonHrs)
		if err != nil {
			s.log.Warn("sentiment: symbol skipped",
				logger.String("symbol", symbol), logger.Error(err))
			continue
		}
		preds = append(preds, *p)
		sum += p.ChangePercent
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("no symbol produced a forecast: %w", models.ErrDataUnavailable)
	}

	avg := sum / float64(len(preds))
	return &models.MarketSentiment{
		Label:            models.SentimentLabelFor(avg),
		AvgChangePercent: avg,
		Predictions:      preds,
		AnalyzedAt:       time.Now().UTC(),
	}, nil
}

func (s *PredictionService) fetch(ctx context.Context, symbol string) ([]models.Candle, error) {
	candles, err := s.source.GetCandles(ctx, symbol, trainInterval, predictCandleLimit)
	if err != nil {
		s.metrics.RecordError("fetch_candles")
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, err)
	}
	if len(candles) < predictMinCandles {
		return nil, fmt.Errorf("%d candles for %s, need %d: %w",
			len(candles), symbol, predictMinCandles, models.ErrDataUnavailable)
	}
	return candles, nil
}

// confidenceFrom maps recent realized volatility onto a bounded confidence
// score: calm tape scores high, choppy tape decays toward the floor.
func confidenceFrom(candles []models.Candle) float64 {
	n := len(candles)
	if n < 2 {
		return confidenceFloor
	}
	start := n - confidenceWindow - 1
	if start < 0 {
		start = 0
	}
	var changes []float64
	for i := start + 1; i < n; i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		changes = append(changes, (candles[i].Close-prev)/prev)
	}
	if len(changes) < 2 {
		return confidenceFloor
	}

	var sum float64
	for _, c := range changes {
		sum += c
	}
	mean := sum / float64(len(changes))
	var sq float64
	for _, c := range changes {
		d := c - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(changes)-1))

	conf := 90 - 10*std*100
	if conf < confidenceFloor {
		conf = confidenceFloor
	}
	if conf > confidenceCeiling {
		conf = confidenceCeiling
	}
	return conf
}

func bbPosition(price, upper, lower float64) string {
	switch {
	case models.Missing(upper) || models.Missing(lower):
		return "unknown"
	case price > upper:
		return "above upper band"
	case price < lower:
		return "below lower band"
	default:
		return "inside bands"
	}
}

func trendOf(smaFast, smaSlow float64) string {
	switch {
	case models.Missing(smaFast) || models.Missing(smaSlow):
		return "unknown"
	case smaFast > smaSlow:
		return "uptrend"
	case smaFast < smaSlow:
		return "downtrend"
	default:
		return "sideways"
	}
}

func signalsOf(t *models.TechnicalSummary, macdSignal float64) []string {
	var out []string
	switch {
	case t.RSI >= 70:
		out = append(out, "RSI overbought")
	case t.RSI <= 30:
		out = append(out, "RSI oversold")
	}
	if !models.Missing(macdSignal) && !models.Missing(t.MACD) {
		if t.MACD > macdSignal {
			out = append(out, "MACD above signal line")
		} else if t.MACD < macdSignal {
			out = append(out, "MACD below signal line")
		}
	}
	switch t.BBPosition {
	case "above upper band":
		out = append(out, "price stretched above upper Bollinger band")
	case "below lower band":
		out = append(out, "price stretched below lower Bollinger band")
	}
	return out
}
