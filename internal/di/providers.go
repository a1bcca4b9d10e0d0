package di

import (
	"fmt"

	"CoinPulse/internal/delivery/telegram"
	"CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/internal/handler/api"
	mid "CoinPulse/internal/middleware"
	internalrepo "CoinPulse/internal/repository"
	"CoinPulse/internal/service/binance"
	"CoinPulse/internal/service/news"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/cache"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	pkgkafka "CoinPulse/pkg/kafka"
	"CoinPulse/pkg/logger"
	"CoinPulse/pkg/metrics"
	"CoinPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	l, err := logger.New(&logger.Config{Level: "info", Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache picks Redis when configured, in-process memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient() *xhttp.Client {
	return xhttp.NewClient()
}

// ProvideMarketDataSource creates the Binance REST client.
func ProvideMarketDataSource(
	cfg *config.Config,
	httpClient *xhttp.Client,
	cacheSvc cache.Service,
	log *logger.Logger,
) repository.MarketDataSource {
	opts := []binance.Option{}
	if cfg.Binance.BaseURL != "" {
		opts = append(opts, binance.WithBaseURL(cfg.Binance.BaseURL))
	}
	if cfg.Binance.CandleCacheTTL > 0 {
		opts = append(opts, binance.WithCandleTTL(cfg.Binance.CandleCacheTTL))
	}
	return binance.NewClient(httpClient, cacheSvc, log, opts...)
}

// ProvideQuoteStream creates the Binance websocket stream.
func ProvideQuoteStream(cfg *config.Config, log *logger.Logger) repository.QuoteStream {
	streamURL := cfg.Binance.StreamURL
	if streamURL == "" {
		streamURL = binance.DefaultStreamURL
	}
	return binance.NewStream(
		streamURL,
		cfg.Binance.Symbols,
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
		log,
	)
}

// ProvideModelStore creates the on-disk model artifact store.
func ProvideModelStore(cfg *config.Config) (repository.ModelStore, error) {
	store, err := internalrepo.NewModelStore(cfg.Models.Dir)
	if err != nil {
		return nil, fmt.Errorf("model store: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when no brokers
// are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher creates the prediction publisher.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return internalrepo.NoopSignalPublisher{}
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideModelCache creates the in-memory per-symbol model cache.
func ProvideModelCache() *usecase.ModelCache {
	return usecase.NewModelCache()
}

// ProvideTrainer creates the training use case.
func ProvideTrainer(
	source repository.MarketDataSource,
	store repository.ModelStore,
	modelCache *usecase.ModelCache,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.TrainingService {
	return usecase.NewTrainingService(source, store, modelCache, m, log)
}

// ProvidePredictor creates the prediction use case.
func ProvidePredictor(
	source repository.MarketDataSource,
	trainer *usecase.TrainingService,
	publisher repository.SignalPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.PredictionService {
	return usecase.NewPredictionService(source, trainer, publisher, m, log)
}

// ProvideNews creates the news sentiment service.
func ProvideNews(
	cfg *config.Config,
	httpClient *xhttp.Client,
	cacheSvc cache.Service,
	log *logger.Logger,
) domsvc.NewsProvider {
	opts := []news.Option{}
	if cfg.News.BaseURL != "" {
		opts = append(opts, news.WithBaseURL(cfg.News.BaseURL))
	}
	return news.NewService(httpClient, cacheSvc, log, opts...)
}

// ProvideQuoteKeeper creates the latest-quote store.
func ProvideQuoteKeeper(m repository.Metrics) *usecase.QuoteKeeper {
	return usecase.NewQuoteKeeper(m)
}

// ProvideQuoteCollector wires the stream through the quote pipeline into
// the keeper.
func ProvideQuoteCollector(
	stream repository.QuoteStream,
	keeper *usecase.QuoteKeeper,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.QuoteCollector {
	pipe := mid.NewQuotePipeline(keeper, m, mid.WithMaxRPS(10))
	return usecase.NewQuoteCollector(stream, pipe, m, log)
}

// ProvideBot creates the Telegram bot, or nil when disabled.
func ProvideBot(
	cfg *config.Config,
	httpClient *xhttp.Client,
	trainer *usecase.TrainingService,
	predictor *usecase.PredictionService,
	newsSvc domsvc.NewsProvider,
	source repository.MarketDataSource,
	keeper *usecase.QuoteKeeper,
	log *logger.Logger,
) *telegram.Bot {
	if !cfg.Telegram.Enabled {
		return nil
	}
	botAPI := telegram.NewAPI(cfg.Telegram.BotToken, httpClient)
	return telegram.NewBot(botAPI, trainer, predictor, newsSvc, source, keeper, cfg.Binance.Symbols, log)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	cfg *config.Config,
	trainer *usecase.TrainingService,
	predictor *usecase.PredictionService,
	newsSvc domsvc.NewsProvider,
	source repository.MarketDataSource,
	log *logger.Logger,
) xhttp.Handler {
	return api.NewPredictionsEchoHandler(log, trainer, predictor, newsSvc, source, cfg.Binance.Symbols)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler xhttp.Handler,
	collector *usecase.QuoteCollector,
	bot *telegram.Bot,
	producer *pkgkafka.Producer,
) *server.App {
	return server.New(cfg, log, handler, collector, bot, producer)
}
