package ml

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes features to zero mean and unit variance per
// column. Fit on the training partition only, then applied everywhere.
type StandardScaler struct {
	Columns []string
	Mean    []float64
	Std     []float64
}

// NewStandardScaler creates an unfitted scaler for the given column layout.
func NewStandardScaler(columns []string) *StandardScaler {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &StandardScaler{Columns: cols}
}

// Fit computes per-column mean and standard deviation.
// Zero-variance columns scale with std 1 so constant features pass through.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("scaler fit: empty matrix")
	}
	p := len(X[0])
	if p != len(s.Columns) {
		return fmt.Errorf("scaler fit: %d columns, want %d", p, len(s.Columns))
	}
	s.Mean = make([]float64, p)
	s.Std = make([]float64, p)
	col := make([]float64, len(X))
	for j := 0; j < p; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || len(X) < 2 {
			std = 1
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
	return nil
}

// Transform standardizes every row of X.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled, err := s.TransformRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// TransformRow standardizes a single feature row.
func (s *StandardScaler) TransformRow(row []float64) ([]float64, error) {
	if s.Mean == nil {
		return nil, fmt.Errorf("scaler not fitted")
	}
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("scaler transform: %d values, want %d", len(row), len(s.Mean))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}

// FitTransform fits the scaler and returns the standardized matrix.
func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
