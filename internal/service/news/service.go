package news

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/pkg/cache"
	pkghttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
)

const (
	DefaultBaseURL = "https://min-api.cryptocompare.com"

	defaultNewsLimit = 10
	maxHeadlines     = 5
	newsCacheTTL     = 5 * time.Minute
	newsCacheKey     = "news:latest"
)

// Service fetches crypto headlines and attaches keyword sentiment.
type Service struct {
	http    *pkghttp.Client
	baseURL string
	cache   cache.Service
	log     *logger.Logger
}

var _ domsvc.NewsProvider = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

func WithBaseURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// NewService creates the news provider.
func NewService(httpClient *pkghttp.Client, cacheSvc cache.Service, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		http:    httpClient,
		baseURL: DefaultBaseURL,
		cache:   cacheSvc,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type newsResponse struct {
	Data []struct {
		Title       string `json:"title"`
		Body        string `json:"body"`
		URL         string `json:"url"`
		Source      string `json:"source"`
		PublishedOn int64  `json:"published_on"`
	} `json:"Data"`
}

// LatestNews returns the newest articles, each labeled with sentiment.
// The feed is cached for a few minutes.
func (s *Service) LatestNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	if limit <= 0 {
		limit = defaultNewsLimit
	}

	articles, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

// MarketSummary aggregates sentiment over the latest feed.
func (s *Service) MarketSummary(ctx context.Context) (*models.NewsSummary, error) {
	articles, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("news summary: empty feed: %w", models.ErrDataUnavailable)
	}

	summary := &models.NewsSummary{
		TotalArticles: len(articles),
		AnalyzedAt:    time.Now().UTC(),
	}
	var score float64
	for _, a := range articles {
		switch a.Sentiment {
		case models.SentimentPositive:
			summary.PositiveCount++
		case models.SentimentNegative:
			summary.NegativeCount++
		default:
			summary.NeutralCount++
		}
		score += ScoreText(a.Title + " " + a.Description)
		if len(summary.TopHeadlines) < maxHeadlines {
			summary.TopHeadlines = append(summary.TopHeadlines, a.Title)
		}
	}
	summary.SentimentScore = score / float64(len(articles))
	summary.OverallSentiment = string(labelFor(summary.SentimentScore))
	return summary, nil
}

func (s *Service) fetch(ctx context.Context) ([]models.NewsArticle, error) {
	var cached []models.NewsArticle
	if err := s.cache.Get(ctx, newsCacheKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	var resp newsResponse
	err := s.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         s.baseURL + "/data/v2/news/",
		QueryParams: map[string][]string{"lang": {"EN"}},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}

	articles := make([]models.NewsArticle, 0, len(resp.Data))
	for _, item := range resp.Data {
		articles = append(articles, models.NewsArticle{
			Title:       item.Title,
			Description: item.Body,
			URL:         item.URL,
			Source:      item.Source,
			PublishedAt: time.Unix(item.PublishedOn, 0).UTC(),
			Sentiment:   ClassifyText(item.Title + " " + item.Body),
		})
	}

	if len(articles) > 0 {
		if err := s.cache.Set(ctx, newsCacheKey, articles, newsCacheTTL); err != nil {
			s.log.Warn("cache news failed", logger.Error(err))
		}
	}
	return articles, nil
}
