package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"CoinPulse/internal/domain/models"
)

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", NormalizeSymbol("btc"))
	assert.Equal(t, "BTCUSDT", NormalizeSymbol(" BTC/USDT "))
	assert.Equal(t, "ETHUSDT", NormalizeSymbol("ethusdt"))
	assert.Equal(t, "SOLUSDT", NormalizeSymbol("sol-usdt"))
	assert.Equal(t, "", NormalizeSymbol("///"))
}

func TestNormalizeInterval(t *testing.T) {
	assert.Equal(t, models.Interval1h, NormalizeInterval(""))
	assert.Equal(t, models.Interval4h, NormalizeInterval("4h"))
	assert.Equal(t, models.Interval1h, NormalizeInterval("7w"))
}
