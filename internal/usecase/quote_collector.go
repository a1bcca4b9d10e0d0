package usecase

import (
	"context"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/logger"
)

// QuoteSink receives quotes read off the stream, usually the quote
// pipeline wrapping a QuoteKeeper.
type QuoteSink interface {
	Process(ctx context.Context, q *models.Quote) error
}

// QuoteCollector drives the exchange quote stream: connect, subscribe,
// read, reconnect on failure, and forward every quote to the sink.
type QuoteCollector struct {
	stream  domrepo.QuoteStream
	sink    QuoteSink
	metrics domrepo.Metrics
	log     *logger.Logger
}

// NewQuoteCollector creates a collector over the given stream.
func NewQuoteCollector(stream domrepo.QuoteStream, sink QuoteSink, metrics domrepo.Metrics, log *logger.Logger) *QuoteCollector {
	return &QuoteCollector{
		stream:  stream,
		sink:    sink,
		metrics: metrics,
		log:     log,
	}
}

// Start connects, subscribes and launches the consume loop.
func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	qCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, qCh, errCh)
	return nil
}

func (c *QuoteCollector) consume(ctx context.Context, qCh <-chan *models.Quote, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				// Read loop exited and closed its channels; re-establish.
				if qCh, errCh = c.reconnect(ctx); qCh == nil {
					return
				}
				continue
			}
			if err != nil {
				c.metrics.RecordError("quote_stream")
				c.log.Warn("quote stream error, reconnecting", logger.Error(err))
				if qCh, errCh = c.reconnect(ctx); qCh == nil {
					return
				}
			}
		case q, ok := <-qCh:
			if !ok {
				if qCh, errCh = c.reconnect(ctx); qCh == nil {
					return
				}
				continue
			}
			if q == nil {
				continue
			}
			if err := c.sink.Process(ctx, q); err != nil {
				c.log.Warn("quote dropped", logger.String("symbol", q.Symbol), logger.Error(err))
			}
		}
	}
}

// reconnect re-dials until it succeeds or the context ends, then starts a
// fresh read loop. The old channels are dead once the read goroutine exits,
// so every reconnect must be followed by a new Read. Returns nil channels
// when the context is done.
func (c *QuoteCollector) reconnect(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	for {
		if ctx.Err() != nil {
			return nil, nil
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.log.Error("quote stream reconnect failed", logger.Error(err))
			select {
			case <-ctx.Done():
				return nil, nil
			case <-time.After(5 * time.Second):
			}
			continue
		}
		return c.stream.Read(ctx)
	}
}

// IsConnected reports the underlying stream state.
func (c *QuoteCollector) IsConnected() bool { return c.stream.IsConnected() }

// Shutdown closes the stream.
func (c *QuoteCollector) Shutdown() error { return c.stream.Close() }
