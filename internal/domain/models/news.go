package models

import "time"

// Sentiment is a keyword-count sentiment label for a piece of text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// NewsArticle is one crypto news item with its derived sentiment.
type NewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Sentiment   Sentiment `json:"sentiment"`
}

// NewsSummary aggregates sentiment across recent articles.
type NewsSummary struct {
	OverallSentiment string    `json:"overall_sentiment"`
	SentimentScore   float64   `json:"sentiment_score"`
	PositiveCount    int       `json:"positive_count"`
	NegativeCount    int       `json:"negative_count"`
	NeutralCount     int       `json:"neutral_count"`
	TopHeadlines     []string  `json:"top_headlines"`
	TotalArticles    int       `json:"total_articles"`
	AnalyzedAt       time.Time `json:"analyzed_at"`
}
