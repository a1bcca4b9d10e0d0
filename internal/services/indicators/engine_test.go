package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

func flatCandles(n int, price float64) []models.Candle {
	out := make([]models.Candle, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = models.Candle{
			OpenTime: base.Add(time.Duration(i) * time.Hour),
			Open:     price, High: price, Low: price, Close: price,
			Volume: 1000,
		}
	}
	return out
}

func risingCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		p := 100 + float64(i)
		out[i] = models.Candle{
			OpenTime: base.Add(time.Duration(i) * time.Hour),
			Open:     p - 0.5, High: p + 1, Low: p - 1, Close: p,
			Volume: 1000 + float64(i),
		}
	}
	return out
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	assert.True(t, models.Missing(got[0]))
	assert.True(t, models.Missing(got[1]))
	assert.InDelta(t, 2, got[2], 1e-12)
	assert.InDelta(t, 4, got[4], 1e-12)
}

func TestEMASeedsWithSimpleMean(t *testing.T) {
	got := EMA([]float64{1, 2, 3, 4, 5}, 3)
	assert.True(t, models.Missing(got[1]))
	assert.InDelta(t, 2, got[2], 1e-12, "seed is the SMA of the first window")
	// k = 0.5 for window 3
	assert.InDelta(t, 4*0.5+2*0.5, got[3], 1e-12)
}

func TestRSIMonotonicSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	got := RSI(closes, 14)
	assert.True(t, models.Missing(got[13]))
	assert.Equal(t, 100.0, got[14], "all gains, no losses")
	assert.Equal(t, 100.0, got[29])
}

func TestOscillatorsFlatWindow(t *testing.T) {
	high := []float64{5, 5, 5}
	low := []float64{5, 5, 5}
	closes := []float64{5, 5, 5}

	k := StochasticK(high, low, closes, 3)
	r := WilliamsR(high, low, closes, 3)
	assert.Equal(t, 50.0, k[2])
	assert.Equal(t, -50.0, r[2])
}

func TestBollingerConstantSeries(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 42
	}
	upper, middle, lower := Bollinger(closes, 20, 2)
	assert.True(t, models.Missing(middle[18]))
	assert.Equal(t, 42.0, middle[24])
	assert.Equal(t, 42.0, upper[24], "zero variance collapses the bands")
	assert.Equal(t, 42.0, lower[24])
}

func TestComputeFlatSeriesLatestRowComplete(t *testing.T) {
	e := NewEngine()
	series, err := e.Compute(flatCandles(100, 50000))
	require.NoError(t, err)
	require.Equal(t, 100, series.Len())

	last := series.Len() - 1
	for _, col := range models.FeatureColumns() {
		vals, ok := series.Column(col)
		require.True(t, ok, col)
		require.Len(t, vals, 100, col)
		assert.False(t, models.Missing(vals[last]), "column %s missing at latest row", col)
	}

	k, _ := series.Column(models.ColStochK)
	r, _ := series.Column(models.ColWilliamsR)
	rsi, _ := series.Column(models.ColRSI)
	assert.Equal(t, 50.0, k[last])
	assert.Equal(t, -50.0, r[last])
	assert.Equal(t, 100.0, rsi[last], "no losses in a flat series")
}

func TestComputeMACDAvailability(t *testing.T) {
	e := NewEngine()
	series, err := e.Compute(risingCandles(60))
	require.NoError(t, err)

	macd, _ := series.Column(models.ColMACD)
	signal, _ := series.Column(models.ColMACDSignal)

	assert.True(t, models.Missing(macd[24]))
	assert.False(t, models.Missing(macd[25]), "macd defined once the slow EMA is")
	assert.True(t, models.Missing(signal[32]))
	assert.False(t, models.Missing(signal[33]), "signal defined after 9 macd values")
}

func TestComputeSupportResistance(t *testing.T) {
	e := NewEngine()
	candles := risingCandles(40)
	series, err := e.Compute(candles)
	require.NoError(t, err)

	support, _ := series.Column(models.ColSupport)
	resistance, _ := series.Column(models.ColResistance)

	last := len(candles) - 1
	assert.Equal(t, candles[last-19].Low, support[last])
	assert.Equal(t, candles[last].High, resistance[last])
	assert.True(t, math.IsNaN(support[18]))
}

func TestComputeEmptyInput(t *testing.T) {
	e := NewEngine()
	_, err := e.Compute(nil)
	assert.Error(t, err)
}
