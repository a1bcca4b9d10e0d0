package features

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/services/indicators"
)

func candleSeries(t *testing.T, n int) *models.IndicatorSeries {
	t.Helper()
	candles := make([]models.Candle, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		p := 200 + float64(i%7) + float64(i)*0.3
		candles[i] = models.Candle{
			OpenTime: base.Add(time.Duration(i) * time.Hour),
			Open:     p - 0.4, High: p + 1.2, Low: p - 1.1, Close: p,
			Volume: 5000 + float64(i*3),
		}
	}
	series, err := indicators.NewEngine().Compute(candles)
	require.NoError(t, err)
	return series
}

func TestBuildDataset(t *testing.T) {
	series := candleSeries(t, 150)
	ds, err := NewBuilder().BuildDataset(series)
	require.NoError(t, err)

	assert.Equal(t, models.FeatureColumns(), ds.Columns)
	assert.Equal(t, len(ds.X), len(ds.Y))
	assert.GreaterOrEqual(t, len(ds.X), MinCleanRows)
	// Warmup rows and the successor-less final candle never make it in.
	assert.Less(t, len(ds.X), 150)

	for _, row := range ds.X {
		assert.Len(t, row, len(ds.Columns))
	}
}

func TestBuildDatasetTargetIsNextClose(t *testing.T) {
	series := candleSeries(t, 120)
	ds, err := NewBuilder().BuildDataset(series)
	require.NoError(t, err)

	// The last training row corresponds to candle n-2, targeting candle n-1.
	lastClose := series.Candles[series.Len()-1].Close
	assert.Equal(t, lastClose, ds.Y[len(ds.Y)-1])
}

func TestBuildDatasetInsufficientRows(t *testing.T) {
	series := candleSeries(t, 60)
	_, err := NewBuilder().BuildDataset(series)
	assert.True(t, errors.Is(err, models.ErrInsufficientData), "warmup leaves too few clean rows")
}

func TestLatestFeatureRow(t *testing.T) {
	series := candleSeries(t, 100)
	row, err := NewBuilder().LatestFeatureRow(series)
	require.NoError(t, err)
	require.Len(t, row, len(models.FeatureColumns()))

	// The latest candle itself is usable for inference.
	opens, _ := series.Column(models.ColOpen)
	assert.Equal(t, opens[series.Len()-1], row[0])
}

func TestLatestFeatureRowTooShort(t *testing.T) {
	candles := make([]models.Candle, 10)
	for i := range candles {
		candles[i] = models.Candle{Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}
	}
	series, err := indicators.NewEngine().Compute(candles)
	require.NoError(t, err)

	_, err = NewBuilder().LatestFeatureRow(series)
	assert.True(t, errors.Is(err, models.ErrInsufficientData))
}
