package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

// fakeStream feeds prepared quotes through the QuoteStream contract. Like
// the real stream, every Read hands out fresh channels that die with the
// read loop.
type fakeStream struct {
	mu        sync.Mutex
	qCh       chan *models.Quote
	errCh     chan error
	readCalls int
	connected bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{}
}

func (f *fakeStream) Connect(context.Context) error   { f.connected = true; return nil }
func (f *fakeStream) Subscribe(context.Context) error { return nil }
func (f *fakeStream) Read(context.Context) (<-chan *models.Quote, <-chan error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCalls++
	f.qCh = make(chan *models.Quote, 16)
	f.errCh = make(chan error, 1)
	return f.qCh, f.errCh
}
func (f *fakeStream) Reconnect(ctx context.Context) error { return f.Connect(ctx) }
func (f *fakeStream) Close() error                        { f.connected = false; return nil }
func (f *fakeStream) IsConnected() bool                   { return f.connected }

func (f *fakeStream) push(q *models.Quote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.qCh <- q
}

// fail emulates a socket error: the read loop reports it and exits,
// closing both channels.
func (f *fakeStream) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errCh <- err
	close(f.errCh)
	close(f.qCh)
}

func (f *fakeStream) reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readCalls
}

func TestQuoteKeeperLatest(t *testing.T) {
	keeper := NewQuoteKeeper(&fakeMetrics{})

	_, ok := keeper.Latest("BTCUSDT")
	assert.False(t, ok)

	now := time.Now()
	require.NoError(t, keeper.Process(context.Background(), &models.Quote{
		Symbol: "BTCUSDT", Price: 68000, Timestamp: now,
	}))
	require.NoError(t, keeper.Process(context.Background(), &models.Quote{
		Symbol: "BTCUSDT", Price: 68100, Timestamp: now.Add(time.Second),
	}))

	q, ok := keeper.Latest("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, 68100.0, q.Price)
}

func TestQuoteCollectorForwardsToSink(t *testing.T) {
	stream := newFakeStream()
	keeper := NewQuoteKeeper(&fakeMetrics{})
	collector := NewQuoteCollector(stream, keeper, &fakeMetrics{}, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, collector.Start(ctx))
	assert.True(t, collector.IsConnected())

	stream.push(&models.Quote{Symbol: "ETHUSDT", Price: 3500, Timestamp: time.Now()})

	assert.Eventually(t, func() bool {
		q, ok := keeper.Latest("ETHUSDT")
		return ok && q.Price == 3500
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, collector.Shutdown())
	assert.False(t, collector.IsConnected())
}

func TestQuoteCollectorRereadsAfterReconnect(t *testing.T) {
	stream := newFakeStream()
	keeper := NewQuoteKeeper(&fakeMetrics{})
	collector := NewQuoteCollector(stream, keeper, &fakeMetrics{}, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, collector.Start(ctx))
	require.Equal(t, 1, stream.reads())

	stream.fail(assert.AnError)

	// A reconnect without a new Read leaves the collector spinning over
	// dead channels and no quote ever arrives again.
	require.Eventually(t, func() bool { return stream.reads() >= 2 },
		time.Second, 10*time.Millisecond)

	stream.push(&models.Quote{Symbol: "BTCUSDT", Price: 68000, Timestamp: time.Now()})
	assert.Eventually(t, func() bool {
		q, ok := keeper.Latest("BTCUSDT")
		return ok && q.Price == 68000
	}, time.Second, 10*time.Millisecond)
}
