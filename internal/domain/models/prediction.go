package models

import "time"

// Recommendation is the trade-direction label derived from a forecast.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG_BUY"
	Buy        Recommendation = "BUY"
	Hold       Recommendation = "HOLD"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG_SELL"
)

// RecommendationFor classifies a forecast change percentage.
// Clauses resolve in order; the first match wins.
func RecommendationFor(changePercent float64) Recommendation {
	switch {
	case changePercent > 5:
		return StrongBuy
	case changePercent > 2:
		return Buy
	case changePercent > -2:
		return Hold
	case changePercent > -5:
		return Sell
	default:
		return StrongSell
	}
}

// Prediction is a point forecast for one symbol. Constructed fresh per
// request, never cached.
type Prediction struct {
	Symbol         string         `json:"symbol"`
	CurrentPrice   float64        `json:"current_price"`
	PredictedPrice float64        `json:"predicted_price"`
	ChangePercent  float64        `json:"change_percent"`
	Confidence     float64        `json:"confidence"`
	Recommendation Recommendation `json:"recommendation"`
	Model          string         `json:"model"`
	GeneratedAt    time.Time      `json:"generated_at"`
	TargetTime     time.Time      `json:"target_time"`
	HorizonHours   int            `json:"horizon_hours"`
}

// MarketSentiment aggregates forecasts across a watch-list.
type MarketSentiment struct {
	Label            string       `json:"label"`
	AvgChangePercent float64      `json:"avg_change_percent"`
	Predictions      []Prediction `json:"predictions"`
	AnalyzedAt       time.Time    `json:"analyzed_at"`
}

// SentimentLabelFor classifies the watch-list average change percentage.
func SentimentLabelFor(avgChange float64) string {
	switch {
	case avgChange > 3:
		return "very bullish"
	case avgChange > 1:
		return "bullish"
	case avgChange > -1:
		return "neutral"
	case avgChange > -3:
		return "bearish"
	default:
		return "very bearish"
	}
}

// TrainingReport summarizes one training run for presentation layers.
type TrainingReport struct {
	Symbol        string    `json:"symbol"`
	Model         string    `json:"model"`
	ValidationMSE float64   `json:"validation_mse"`
	Samples       int       `json:"samples"`
	FromCache     bool      `json:"from_cache"`
	TrainedAt     time.Time `json:"trained_at"`
}
