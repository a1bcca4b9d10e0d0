package features

import (
	"fmt"

	"CoinPulse/internal/domain/models"
)

// MinCleanRows is the smallest usable training set after dropping rows with
// missing values.
const MinCleanRows = 50

// Dataset is a supervised matrix over the fixed feature-column layout.
// Row i targets the close of candle i+1.
type Dataset struct {
	Columns []string
	X       [][]float64
	Y       []float64
}

// Builder assembles model-ready matrices from indicator series.
type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

// BuildDataset pairs every complete feature row with the next candle's close.
// The final candle has no successor and is never a training row. Rows with
// any missing value are dropped; fewer than MinCleanRows survivors is an
// ErrInsufficientData failure.
func (b *Builder) BuildDataset(series *models.IndicatorSeries) (*Dataset, error) {
	if series == nil || series.Len() < 2 {
		return nil, fmt.Errorf("build dataset: %w", models.ErrInsufficientData)
	}

	columns := models.FeatureColumns()
	n := series.Len()

	ds := &Dataset{Columns: columns}
	for i := 0; i < n-1; i++ {
		row, ok := b.rowAt(series, columns, i)
		if !ok {
			continue
		}
		ds.X = append(ds.X, row)
		ds.Y = append(ds.Y, series.Candles[i+1].Close)
	}

	if len(ds.X) < MinCleanRows {
		return nil, fmt.Errorf("build dataset: %d clean rows: %w", len(ds.X), models.ErrInsufficientData)
	}
	return ds, nil
}

// LatestFeatureRow returns the newest complete feature row for inference.
// Unlike training rows it needs no successor candle.
func (b *Builder) LatestFeatureRow(series *models.IndicatorSeries) ([]float64, error) {
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("latest feature row: %w", models.ErrInsufficientData)
	}
	columns := models.FeatureColumns()
	for i := series.Len() - 1; i >= 0; i-- {
		if row, ok := b.rowAt(series, columns, i); ok {
			return row, nil
		}
	}
	return nil, fmt.Errorf("latest feature row: no complete row: %w", models.ErrInsufficientData)
}

func (b *Builder) rowAt(series *models.IndicatorSeries, columns []string, i int) ([]float64, bool) {
	row := make([]float64, len(columns))
	for j, col := range columns {
		vals, ok := series.Column(col)
		if !ok || i >= len(vals) || models.Missing(vals[i]) {
			return nil, false
		}
		row[j] = vals[i]
	}
	return row, true
}
