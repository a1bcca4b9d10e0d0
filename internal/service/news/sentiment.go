package news

import (
	"strings"

	"CoinPulse/internal/domain/models"
)

// Keyword lists drive a simple lexical sentiment score. Crude but fast, and
// good enough to color a headline feed.
var (
	positiveWords = []string{
		"bullish", "surge", "rally", "moon", "pump", "gain", "gains",
		"soar", "soars", "breakout", "adoption", "partnership", "upgrade",
		"growth", "record", "approval", "approved", "institutional",
		"breakthrough", "milestone", "launch", "integration", "buy",
	}
	negativeWords = []string{
		"bearish", "crash", "dump", "plunge", "plunges", "drop", "drops",
		"hack", "hacked", "scam", "fraud", "ban", "banned", "lawsuit",
		"selloff", "sell-off", "liquidation", "fear", "decline", "exploit",
		"bankruptcy", "collapse", "warning", "theft", "sued",
	}
)

const sentimentThreshold = 0.3

// ScoreText counts sentiment keywords in the text and returns the normalized
// score in [-1, 1]: (positive - negative) / total hits.
func ScoreText(text string) float64 {
	lowered := strings.ToLower(text)
	var pos, neg int
	for _, w := range positiveWords {
		pos += strings.Count(lowered, w)
	}
	for _, w := range negativeWords {
		neg += strings.Count(lowered, w)
	}
	total := pos + neg
	if total == 0 {
		return 0
	}
	return float64(pos-neg) / float64(total)
}

// ClassifyText maps a text to its sentiment label.
func ClassifyText(text string) models.Sentiment {
	return labelFor(ScoreText(text))
}

func labelFor(score float64) models.Sentiment {
	switch {
	case score > sentimentThreshold:
		return models.SentimentPositive
	case score < -sentimentThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
