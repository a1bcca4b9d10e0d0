package ml

import (
	"fmt"
	"math/rand"
)

// GradientBoosting fits shallow regression trees to the running residual with
// a fixed shrinkage rate, starting from the target mean.
type GradientBoosting struct {
	Trees        []*RegressionTree
	Init         float64
	NumTrees     int
	MaxDepth     int
	LearningRate float64
	Seed         int64
}

// NewGradientBoosting creates an unfitted booster with depth-3 stages and
// shrinkage 0.1.
func NewGradientBoosting(numTrees int, seed int64) *GradientBoosting {
	return &GradientBoosting{NumTrees: numTrees, MaxDepth: 3, LearningRate: 0.1, Seed: seed}
}

func (g *GradientBoosting) Name() string { return ModelGradientBoosting }

// Fit runs NumTrees boosting stages on the squared-error residual.
func (g *GradientBoosting) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return fmt.Errorf("boosting fit: %d rows, %d targets", n, len(y))
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var initSum float64
	for _, v := range y {
		initSum += v
	}
	g.Init = initSum / float64(n)

	residual := make([]float64, n)
	for i, v := range y {
		residual[i] = v - g.Init
	}

	rng := rand.New(rand.NewSource(g.Seed))
	g.Trees = make([]*RegressionTree, 0, g.NumTrees)
	for t := 0; t < g.NumTrees; t++ {
		tree := NewRegressionTree(g.MaxDepth, 2, 0)
		if err := tree.FitIndexed(X, residual, idx, rng); err != nil {
			return fmt.Errorf("boosting fit stage %d: %w", t, err)
		}
		g.Trees = append(g.Trees, tree)
		for i, row := range X {
			residual[i] -= g.LearningRate * tree.Predict(row)
		}
	}
	return nil
}

// Predict sums the shrunken stage outputs on top of the initial mean.
func (g *GradientBoosting) Predict(x []float64) float64 {
	pred := g.Init
	for _, t := range g.Trees {
		pred += g.LearningRate * t.Predict(x)
	}
	return pred
}
