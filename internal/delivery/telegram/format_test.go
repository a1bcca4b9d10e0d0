package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"CoinPulse/internal/domain/models"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "68,123.45", FormatPrice(68123.45))
	assert.Equal(t, "1,000", FormatPrice(1000.00))
	assert.Equal(t, "3.1416", FormatPrice(3.14159))
	assert.Equal(t, "0.023456", FormatPrice(0.0234561))
	assert.Equal(t, "0.00000123", FormatPrice(0.00000123))
	assert.Equal(t, "2", FormatPrice(2.0), "trailing zeros trimmed")
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "🟢 +2.50%", FormatPercent(2.5))
	assert.Equal(t, "🔴 -1.20%", FormatPercent(-1.2))
	assert.Equal(t, "⚪ +0.00%", FormatPercent(0))
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "1.23B", FormatVolume(1_234_000_000))
	assert.Equal(t, "45.60M", FormatVolume(45_600_000))
	assert.Equal(t, "7.80K", FormatVolume(7800))
	assert.Equal(t, "420.00", FormatVolume(420))
}

func TestParseCommand(t *testing.T) {
	cmd, args := parseCommand("/predict BTC 12")
	assert.Equal(t, "predict", cmd)
	assert.Equal(t, []string{"BTC", "12"}, args)

	cmd, args = parseCommand("/PREDICT@CoinPulseBot eth")
	assert.Equal(t, "predict", cmd)
	assert.Equal(t, []string{"eth"}, args)

	cmd, _ = parseCommand("hello there")
	assert.Empty(t, cmd)

	cmd, args = parseCommand("  /help  ")
	assert.Equal(t, "help", cmd)
	assert.Empty(t, args)
}

func TestPredictionMessage(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	msg := PredictionMessage(&models.Prediction{
		Symbol:         "BTCUSDT",
		CurrentPrice:   68000,
		PredictedPrice: 70100,
		ChangePercent:  3.09,
		Confidence:     82,
		Recommendation: models.Buy,
		Model:          "random_forest",
		GeneratedAt:    now,
		TargetTime:     now.Add(24 * time.Hour),
		HorizonHours:   24,
	})

	assert.Contains(t, msg, "BTCUSDT Prediction (24h)")
	assert.Contains(t, msg, "$68,000")
	assert.Contains(t, msg, "$70,100")
	assert.Contains(t, msg, "🟢 +3.09%")
	assert.Contains(t, msg, "BUY")
	assert.Contains(t, msg, "random_forest")
}

func TestAnalysisMessage(t *testing.T) {
	msg := AnalysisMessage(&models.TechnicalSummary{
		Symbol:       "ETHUSDT",
		CurrentPrice: 3500,
		RSI:          71.2,
		MACD:         1.2345,
		Support:      3300,
		Resistance:   3700,
		BBPosition:   "inside bands",
		Trend:        "uptrend",
		Signals:      []string{"RSI overbought"},
	})

	assert.Contains(t, msg, "ETHUSDT Technical Analysis")
	assert.Contains(t, msg, "RSI(14): 71.2")
	assert.Contains(t, msg, "uptrend")
	assert.Contains(t, msg, "• RSI overbought")
}

func TestNewsMessageEmpty(t *testing.T) {
	assert.Equal(t, "📰 No news right now.", NewsMessage(nil))
}

func TestTrainingMessage(t *testing.T) {
	msg := TrainingMessage(&models.TrainingReport{
		Symbol:        "BTCUSDT",
		Model:         "gradient_boosting",
		ValidationMSE: 1234.5678,
		Samples:       420,
		FromCache:     true,
		TrainedAt:     time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC),
	})

	assert.Contains(t, msg, "loaded from cache")
	assert.Contains(t, msg, "gradient_boosting")
	assert.Contains(t, msg, "Samples: 420")
}

func TestErrorReply(t *testing.T) {
	assert.Contains(t, errorReply("BTCUSDT", models.ErrDataUnavailable), "Not enough market data")
	assert.Contains(t, errorReply("BTCUSDT", models.ErrInsufficientData), "too little usable history")
	assert.Contains(t, errorReply("BTCUSDT", models.ErrModelUnavailable), "/train BTCUSDT")
	assert.Contains(t, errorReply("BTCUSDT", assert.AnError), "Something went wrong")
}
