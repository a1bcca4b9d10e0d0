package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/cache"
	pkghttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
)

func TestScoreText(t *testing.T) {
	assert.Equal(t, 1.0, ScoreText("Bitcoin rally continues, bullish breakout"))
	assert.Equal(t, -1.0, ScoreText("Exchange hack triggers crash and selloff"))
	assert.Equal(t, 0.0, ScoreText("Bitcoin trades sideways on Tuesday"))
	assert.Equal(t, 0.0, ScoreText("Rally fades into a crash"), "one positive, one negative")
}

func TestClassifyText(t *testing.T) {
	assert.Equal(t, models.SentimentPositive, ClassifyText("surge and rally ahead"))
	assert.Equal(t, models.SentimentNegative, ClassifyText("fraud lawsuit and ban"))
	assert.Equal(t, models.SentimentNeutral, ClassifyText("no signal words here"))
}

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return NewService(pkghttp.NewClient(), cache.NewMemoryCache(), log, WithBaseURL(srv.URL))
}

const feedBody = `{"Data":[
	{"title":"Bitcoin rally gains steam","body":"bullish surge across majors","url":"https://example.com/1","source":"example","published_on":1750000000},
	{"title":"Exchange hack drains funds","body":"theft and liquidation cascade","url":"https://example.com/2","source":"example","published_on":1750000100},
	{"title":"Stablecoin report published","body":"quarterly attestation released","url":"https://example.com/3","source":"example","published_on":1750000200}
]}`

func TestLatestNews(t *testing.T) {
	var hits int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data/v2/news/", r.URL.Path)
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, feedBody)
	}))

	articles, err := svc.LatestNews(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, models.SentimentPositive, articles[0].Sentiment)
	assert.Equal(t, models.SentimentNegative, articles[1].Sentiment)
	assert.Equal(t, "https://example.com/1", articles[0].URL)

	// Second read comes from cache.
	_, err = svc.LatestNews(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestMarketSummary(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedBody)
	}))

	sum, err := svc.MarketSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.TotalArticles)
	assert.Equal(t, 1, sum.PositiveCount)
	assert.Equal(t, 1, sum.NegativeCount)
	assert.Equal(t, 1, sum.NeutralCount)
	assert.Len(t, sum.TopHeadlines, 3)
	assert.InDelta(t, 0, sum.SentimentScore, 1e-9)
	assert.Equal(t, string(models.SentimentNeutral), sum.OverallSentiment)
}

func TestMarketSummaryEmptyFeed(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Data":[]}`)
	}))

	_, err := svc.MarketSummary(context.Background())
	assert.Error(t, err)
}
