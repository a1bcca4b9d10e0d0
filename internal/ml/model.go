package ml

import (
	"encoding/gob"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
)

// Model type names, in candidate evaluation order.
const (
	ModelRandomForest     = "random_forest"
	ModelGradientBoosting = "gradient_boosting"
	ModelLinear           = "linear"
)

// Regressor is a trainable point-forecast model.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) float64
	Name() string
}

func init() {
	gob.Register(&RandomForest{})
	gob.Register(&GradientBoosting{})
	gob.Register(&LinearRegression{})
}

// TrainedModel owns a fitted regressor and the scaler it was fit with.
// Invariant: both were fit on the exact same ordered feature-column set.
type TrainedModel struct {
	Symbol        string
	Columns       []string
	SchemaVersion int
	Model         Regressor
	Scaler        *StandardScaler
	ValidationMSE float64
	Samples       int
	TrainedAt     time.Time
}

// PredictRow scales one feature row and runs the regressor. The row's
// column layout must match the fit-time layout exactly.
func (m *TrainedModel) PredictRow(row []float64, columns []string) (float64, error) {
	if !ColumnsEqual(columns, m.Columns) {
		return 0, fmt.Errorf("model %s: %w", m.Symbol, models.ErrFeatureMismatch)
	}
	scaled, err := m.Scaler.TransformRow(row)
	if err != nil {
		return 0, fmt.Errorf("scale row: %w", err)
	}
	return m.Model.Predict(scaled), nil
}

// ColumnsEqual reports whether two column layouts are identical, including order.
func ColumnsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MeanSquaredError computes the MSE between predictions and targets.
func MeanSquaredError(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	var sum float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		sum += d * d
	}
	return sum / float64(len(yTrue))
}

// PredictBatch runs the regressor over every row.
func PredictBatch(r Regressor, X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = r.Predict(x)
	}
	return out
}
