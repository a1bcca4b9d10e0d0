package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/internal/ml"
	"CoinPulse/internal/services/features"
	"CoinPulse/internal/services/indicators"
	"CoinPulse/pkg/logger"
)

const (
	trainCandleLimit = 500
	trainMinCandles  = 100
	trainInterval    = models.Interval1h
	trainSeed        = 42
	trainSplit       = 0.8
	ensembleTrees    = 100
	forestMaxDepth   = 12
)

// TrainingService fits per-symbol price models and keeps the artifact store
// and in-memory cache coherent. One training run per symbol at a time; the
// per-symbol cache lock makes concurrent callers wait instead of duplicating
// work.
type TrainingService struct {
	source  domrepo.MarketDataSource
	store   domrepo.ModelStore
	cache   *ModelCache
	engine  *indicators.Engine
	builder *features.Builder
	metrics domrepo.Metrics
	log     *logger.Logger
}

var _ domsvc.Trainer = (*TrainingService)(nil)

func NewTrainingService(
	source domrepo.MarketDataSource,
	store domrepo.ModelStore,
	cache *ModelCache,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *TrainingService {
	return &TrainingService{
		source:  source,
		store:   store,
		cache:   cache,
		engine:  indicators.NewEngine(),
		builder: features.NewBuilder(),
		metrics: metrics,
		log:     log,
	}
}

// Train returns a ready model report for the symbol. Without force it serves
// the memory cache first, then the disk artifact pair, and only then fetches
// data and fits. With force it always refits and overwrites both layers.
func (s *TrainingService) Train(ctx context.Context, symbol string, force bool) (*models.TrainingReport, error) {
	if force {
		m, err := s.cache.Fill(symbol, func() (*ml.TrainedModel, error) {
			return s.fit(ctx, symbol)
		})
		if err != nil {
			return nil, err
		}
		return reportFor(m, false), nil
	}

	var fitted bool
	m, hit, err := s.cache.GetOrFill(symbol, func() (*ml.TrainedModel, error) {
		if s.store.Exists(symbol) {
			if loaded, err := s.store.Load(symbol); err == nil {
				s.log.Debug("model loaded from disk", logger.String("symbol", symbol))
				return loaded, nil
			} else {
				s.log.Warn("stored model unusable, refitting",
					logger.String("symbol", symbol), logger.Error(err))
			}
		}
		fitted = true
		return s.fit(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		s.metrics.RecordModelCacheHit(symbol)
	}
	return reportFor(m, !fitted), nil
}

// Model returns the cached model for a symbol, training on demand.
func (s *TrainingService) Model(ctx context.Context, symbol string) (*ml.TrainedModel, error) {
	if _, err := s.Train(ctx, symbol, false); err != nil {
		return nil, err
	}
	m, ok := s.cache.Get(symbol)
	if !ok {
		return nil, fmt.Errorf("model for %s: %w", symbol, models.ErrModelUnavailable)
	}
	return m, nil
}

// fit runs the full pipeline: fetch, derive indicators, build the dataset,
// evaluate the candidate regressors and persist the winner.
func (s *TrainingService) fit(ctx context.Context, symbol string) (*ml.TrainedModel, error) {
	start := time.Now()

	candles, err := s.source.GetCandles(ctx, symbol, trainInterval, trainCandleLimit)
	if err != nil {
		s.metrics.RecordError("fetch_candles")
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, err)
	}
	if len(candles) < trainMinCandles {
		return nil, fmt.Errorf("%d candles for %s, need %d: %w",
			len(candles), symbol, trainMinCandles, models.ErrDataUnavailable)
	}

	series, err := s.engine.Compute(candles)
	if err != nil {
		return nil, fmt.Errorf("compute indicators for %s: %w", symbol, err)
	}
	ds, err := s.builder.BuildDataset(series)
	if err != nil {
		return nil, fmt.Errorf("build dataset for %s: %w", symbol, err)
	}

	trainX, trainY, valX, valY := splitDataset(ds, trainSplit, trainSeed)

	scaler := ml.NewStandardScaler(ds.Columns)
	scaledTrain, err := scaler.FitTransform(trainX)
	if err != nil {
		return nil, fmt.Errorf("fit scaler for %s: %w", symbol, err)
	}
	scaledVal, err := scaler.Transform(valX)
	if err != nil {
		return nil, fmt.Errorf("scale validation set for %s: %w", symbol, err)
	}

	// Candidates are evaluated in a fixed order; a strict improvement is
	// required to displace an earlier winner, so ties keep the first model.
	candidates := []ml.Regressor{
		ml.NewRandomForest(ensembleTrees, forestMaxDepth, trainSeed),
		ml.NewGradientBoosting(ensembleTrees, trainSeed),
		ml.NewLinearRegression(),
	}

	var best ml.Regressor
	bestMSE := math.Inf(1)
	for _, cand := range candidates {
		if err := cand.Fit(scaledTrain, trainY); err != nil {
			return nil, fmt.Errorf("fit %s for %s: %w", cand.Name(), symbol, err)
		}
		mse := ml.MeanSquaredError(valY, ml.PredictBatch(cand, scaledVal))
		s.log.Debug("candidate evaluated",
			logger.String("symbol", symbol),
			logger.String("model", cand.Name()),
			logger.Any("mse", mse))
		if best == nil || mse < bestMSE {
			best = cand
			bestMSE = mse
		}
	}

	m := &ml.TrainedModel{
		Symbol:        symbol,
		Columns:       ds.Columns,
		SchemaVersion: models.FeatureSchemaVersion,
		Model:         best,
		Scaler:        scaler,
		ValidationMSE: bestMSE,
		Samples:       len(ds.X),
		TrainedAt:     time.Now().UTC(),
	}
	if err := s.store.Save(m); err != nil {
		return nil, fmt.Errorf("persist model for %s: %w", symbol, err)
	}

	elapsed := time.Since(start)
	s.metrics.RecordTraining(symbol, best.Name(), elapsed.Seconds())
	s.log.Info("model trained",
		logger.String("symbol", symbol),
		logger.String("model", best.Name()),
		logger.Any("validation_mse", bestMSE),
		logger.Int("samples", len(ds.X)),
		logger.Duration("took", elapsed))
	return m, nil
}

// splitDataset shuffles deterministically and carves off the validation tail.
func splitDataset(ds *features.Dataset, ratio float64, seed int64) (trainX [][]float64, trainY []float64, valX [][]float64, valY []float64) {
	n := len(ds.X)
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	cut := int(float64(n) * ratio)
	if cut >= n {
		cut = n - 1
	}
	if cut < 1 {
		cut = 1
	}
	for i, p := range perm {
		if i < cut {
			trainX = append(trainX, ds.X[p])
			trainY = append(trainY, ds.Y[p])
		} else {
			valX = append(valX, ds.X[p])
			valY = append(valY, ds.Y[p])
		}
	}
	return trainX, trainY, valX, valY
}

func reportFor(m *ml.TrainedModel, fromCache bool) *models.TrainingReport {
	return &models.TrainingReport{
		Symbol:        m.Symbol,
		Model:         m.Model.Name(),
		ValidationMSE: m.ValidationMSE,
		Samples:       m.Samples,
		FromCache:     fromCache,
		TrainedAt:     m.TrainedAt,
	}
}
