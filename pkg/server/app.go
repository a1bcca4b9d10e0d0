package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CoinPulse/internal/delivery/telegram"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	collector *usecase.QuoteCollector
	bot       *telegram.Bot
	producer  *pkgkafka.Producer

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies. collector, bot
// and producer may be nil when the corresponding surface is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	collector *usecase.QuoteCollector,
	bot *telegram.Bot,
	producer *pkgkafka.Producer,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		collector:   collector,
		bot:         bot,
		producer:    producer,
		httpHandler: handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Aggregate error logs into Kafka when a broker is configured.
	if a.producer != nil {
		a.log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          a.cfg.Kafka.Topic + ".logs",
			Publisher:      a.producer,
		})
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start the live quote stream
	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Warn("quote stream start failed, continuing without live quotes",
				applogger.Error(err))
		} else {
			a.log.Info("quote stream started",
				applogger.Strings("symbols", a.cfg.Binance.Symbols))
		}
	}

	// Start the Telegram poller
	if a.bot != nil {
		go func() {
			if err := a.bot.Run(ctx); err != nil && ctx.Err() == nil {
				a.log.Error("telegram bot stopped", applogger.Error(err))
			}
		}()
		a.log.Info("telegram bot started")
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	if a.collector != nil {
		if err := a.collector.Shutdown(); err != nil {
			a.log.Warn("quote stream close error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.producer != nil {
		a.log.RemoveCollector()
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
