package usecase

import (
	"context"
	"sync"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
)

// QuoteKeeper holds the latest streamed price per symbol. Lookups are
// served from memory so /price replies do not hit the exchange on every
// message.
type QuoteKeeper struct {
	metrics domrepo.Metrics

	mu     sync.RWMutex
	latest map[string]models.Quote
}

// NewQuoteKeeper creates an empty keeper.
func NewQuoteKeeper(metrics domrepo.Metrics) *QuoteKeeper {
	return &QuoteKeeper{
		metrics: metrics,
		latest:  make(map[string]models.Quote),
	}
}

// Process stores the quote as the symbol's latest. Implements the quote
// pipeline's downstream interface.
func (k *QuoteKeeper) Process(_ context.Context, q *models.Quote) error {
	k.mu.Lock()
	k.latest[q.Symbol] = *q
	k.mu.Unlock()
	k.metrics.RecordLastPrice(q.Symbol, q.Price)
	return nil
}

// Latest returns the most recent streamed quote for a symbol.
func (k *QuoteKeeper) Latest(symbol string) (models.Quote, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	q, ok := k.latest[symbol]
	return q, ok
}
