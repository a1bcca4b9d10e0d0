//go:build wireinject
// +build wireinject

package di

import (
	"CoinPulse/pkg/config"
	"CoinPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,
		ProvideHTTPClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideMarketDataSource,
		ProvideQuoteStream,
		ProvideModelStore,
		ProvideSignalPublisher,

		// Use cases
		ProvideModelCache,
		ProvideTrainer,
		ProvidePredictor,
		ProvideNews,
		ProvideQuoteKeeper,
		ProvideQuoteCollector,

		// Delivery
		ProvideBot,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
