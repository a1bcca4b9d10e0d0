package repository

import (
	"strings"

	"CoinPulse/internal/domain/models"
)

// IsValidInterval returns true if the interval is supported.
func IsValidInterval(iv models.Interval) bool {
	switch iv {
	case models.Interval1m, models.Interval5m, models.Interval1h, models.Interval4h, models.Interval1d:
		return true
	default:
		return false
	}
}

// DefaultInterval is the candle period used by the prediction pipeline.
func DefaultInterval() models.Interval { return models.Interval1h }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) models.Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := models.Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}

// NormalizeSymbol uppercases user input, strips non-alphanumerics, and
// appends USDT when no quote asset is present ("btc" -> "BTCUSDT").
func NormalizeSymbol(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" {
		return ""
	}
	if !strings.HasSuffix(s, "USDT") && len(s) <= 10 {
		s += "USDT"
	}
	return s
}
