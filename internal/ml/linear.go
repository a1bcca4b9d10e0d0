package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ridgeEpsilon stabilizes the normal equations when the design matrix is
// rank deficient (constant feature columns after standardization).
const ridgeEpsilon = 1e-8

// LinearRegression is an ordinary least-squares regressor solved via the
// normal equations with a tiny ridge term.
type LinearRegression struct {
	// Weights holds one coefficient per feature plus the intercept last.
	Weights []float64
}

// NewLinearRegression creates an unfitted linear regressor.
func NewLinearRegression() *LinearRegression { return &LinearRegression{} }

func (l *LinearRegression) Name() string { return ModelLinear }

// Fit solves (XᵀX + εI)w = Xᵀy over the bias-augmented design matrix.
func (l *LinearRegression) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return fmt.Errorf("linear fit: %d rows, %d targets", n, len(y))
	}
	p := len(X[0])

	a := mat.NewDense(n, p+1, nil)
	for i, row := range X {
		for j, v := range row {
			a.Set(i, j, v)
		}
		a.Set(i, p, 1)
	}
	yv := mat.NewVecDense(n, y)

	var xtx mat.Dense
	xtx.Mul(a.T(), a)
	for j := 0; j <= p; j++ {
		xtx.Set(j, j, xtx.At(j, j)+ridgeEpsilon)
	}
	var xty mat.VecDense
	xty.MulVec(a.T(), yv)

	var w mat.VecDense
	if err := w.SolveVec(&xtx, &xty); err != nil {
		return fmt.Errorf("linear fit: solve normal equations: %w", err)
	}

	l.Weights = make([]float64, p+1)
	for j := 0; j <= p; j++ {
		l.Weights[j] = w.AtVec(j)
	}
	return nil
}

// Predict evaluates wᵀx + b for one feature row.
func (l *LinearRegression) Predict(x []float64) float64 {
	if len(l.Weights) == 0 {
		return 0
	}
	pred := l.Weights[len(l.Weights)-1]
	for j, v := range x {
		if j >= len(l.Weights)-1 {
			break
		}
		pred += l.Weights[j] * v
	}
	return pred
}
