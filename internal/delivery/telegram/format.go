package telegram

import (
	"fmt"
	"strings"

	"CoinPulse/internal/domain/models"
)

// FormatPrice renders a price with precision scaled to its magnitude, the way
// traders expect: majors get cents, micro-caps keep their long tails.
func FormatPrice(price float64) string {
	var decimals int
	switch {
	case price >= 1000:
		decimals = 2
	case price >= 1:
		decimals = 4
	case price >= 0.01:
		decimals = 6
	default:
		decimals = 8
	}
	s := fmt.Sprintf("%.*f", decimals, price)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return groupThousands(s)
}

// FormatPercent renders a signed percentage with a direction marker.
func FormatPercent(pct float64) string {
	switch {
	case pct > 0:
		return fmt.Sprintf("🟢 +%.2f%%", pct)
	case pct < 0:
		return fmt.Sprintf("🔴 %.2f%%", pct)
	default:
		return "⚪ +0.00%"
	}
}

// FormatVolume compacts a volume figure to K/M/B units.
func FormatVolume(volume float64) string {
	switch {
	case volume >= 1e9:
		return fmt.Sprintf("%.2fB", volume/1e9)
	case volume >= 1e6:
		return fmt.Sprintf("%.2fM", volume/1e6)
	case volume >= 1e3:
		return fmt.Sprintf("%.2fK", volume/1e3)
	default:
		return fmt.Sprintf("%.2f", volume)
	}
}

// groupThousands inserts comma separators into the integer part.
func groupThousands(s string) string {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	if neg {
		intPart = "-" + intPart
	}
	return intPart + frac
}

func recommendationEmoji(r models.Recommendation) string {
	switch r {
	case models.StrongBuy:
		return "🚀"
	case models.Buy:
		return "📈"
	case models.Sell:
		return "📉"
	case models.StrongSell:
		return "🛑"
	default:
		return "⏸"
	}
}

// PredictionMessage renders a forecast reply.
func PredictionMessage(p *models.Prediction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔮 *%s Prediction (%dh)*\n\n", p.Symbol, p.HorizonHours)
	fmt.Fprintf(&b, "💰 Current: $%s\n", FormatPrice(p.CurrentPrice))
	fmt.Fprintf(&b, "🎯 Predicted: $%s\n", FormatPrice(p.PredictedPrice))
	fmt.Fprintf(&b, "📊 Change: %s\n", FormatPercent(p.ChangePercent))
	fmt.Fprintf(&b, "🎲 Confidence: %.0f%%\n", p.Confidence)
	fmt.Fprintf(&b, "%s Recommendation: *%s*\n\n", recommendationEmoji(p.Recommendation), p.Recommendation)
	fmt.Fprintf(&b, "_model: %s, target: %s UTC_", p.Model, p.TargetTime.Format("Jan 2 15:04"))
	return b.String()
}

// PriceMessage renders a 24h ticker reply.
func PriceMessage(t *models.Ticker24h) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 *%s*\n\n", t.Symbol)
	fmt.Fprintf(&b, "Price: $%s\n", FormatPrice(t.LastPrice))
	fmt.Fprintf(&b, "24h: %s\n", FormatPercent(t.ChangePercent))
	fmt.Fprintf(&b, "High: $%s · Low: $%s\n", FormatPrice(t.High), FormatPrice(t.Low))
	fmt.Fprintf(&b, "Volume: %s", FormatVolume(t.Volume))
	return b.String()
}

// AnalysisMessage renders a technical snapshot reply.
func AnalysisMessage(s *models.TechnicalSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *%s Technical Analysis*\n\n", s.Symbol)
	fmt.Fprintf(&b, "💰 Price: $%s\n", FormatPrice(s.CurrentPrice))
	fmt.Fprintf(&b, "RSI(14): %.1f\n", s.RSI)
	fmt.Fprintf(&b, "MACD: %.4f\n", s.MACD)
	fmt.Fprintf(&b, "Trend: %s\n", s.Trend)
	fmt.Fprintf(&b, "Bollinger: %s\n", s.BBPosition)
	fmt.Fprintf(&b, "Support: $%s · Resistance: $%s\n", FormatPrice(s.Support), FormatPrice(s.Resistance))
	if len(s.Signals) > 0 {
		b.WriteString("\n*Signals:*\n")
		for _, sig := range s.Signals {
			fmt.Fprintf(&b, "• %s\n", sig)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// SentimentMessage renders the watch-list sentiment reply.
func SentimentMessage(s *models.MarketSentiment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌡 *Market Sentiment: %s*\n", strings.ToUpper(s.Label))
	fmt.Fprintf(&b, "Average 24h forecast: %s\n\n", FormatPercent(s.AvgChangePercent))
	for _, p := range s.Predictions {
		fmt.Fprintf(&b, "%s %s: %s\n", recommendationEmoji(p.Recommendation), p.Symbol, FormatPercent(p.ChangePercent))
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewsMessage renders a headline list reply.
func NewsMessage(articles []models.NewsArticle) string {
	if len(articles) == 0 {
		return "📰 No news right now."
	}
	var b strings.Builder
	b.WriteString("📰 *Latest Crypto News*\n\n")
	for _, a := range articles {
		emoji := "⚪"
		switch a.Sentiment {
		case models.SentimentPositive:
			emoji = "🟢"
		case models.SentimentNegative:
			emoji = "🔴"
		}
		fmt.Fprintf(&b, "%s [%s](%s)\n", emoji, a.Title, a.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// TrainingMessage renders a /train reply.
func TrainingMessage(r *models.TrainingReport) string {
	state := "trained"
	if r.FromCache {
		state = "loaded from cache"
	}
	return fmt.Sprintf(
		"🧠 *%s model %s*\n\nModel: %s\nValidation MSE: %.4f\nSamples: %d\nTrained: %s UTC",
		r.Symbol, state, r.Model, r.ValidationMSE, r.Samples,
		r.TrainedAt.Format("Jan 2 15:04"),
	)
}

const helpText = `🤖 *CoinPulse Bot*

/predict <symbol> [hours] - price forecast
/price <symbol> - current price and 24h stats
/analysis <symbol> - technical indicators
/sentiment - watch-list market sentiment
/news - latest headlines with sentiment
/train <symbol> - force model retrain
/help - this message

Symbols default to USDT pairs, e.g. ` + "`/predict BTC`" + `.`
