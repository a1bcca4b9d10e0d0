package ml

import (
	"fmt"
	"math/rand"
)

// RandomForest averages bootstrapped regression trees with per-split feature
// subsampling. A single seeded source keeps training deterministic.
type RandomForest struct {
	Trees    []*RegressionTree
	NumTrees int
	MaxDepth int
	MinLeaf  int
	Seed     int64
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(numTrees, maxDepth int, seed int64) *RandomForest {
	return &RandomForest{NumTrees: numTrees, MaxDepth: maxDepth, MinLeaf: 2, Seed: seed}
}

func (f *RandomForest) Name() string { return ModelRandomForest }

// Fit grows NumTrees trees, each on a bootstrap sample of the rows with
// max(1, p/3) candidate features per split.
func (f *RandomForest) Fit(X [][]float64, y []float64) error {
	n := len(X)
	if n == 0 || n != len(y) {
		return fmt.Errorf("forest fit: %d rows, %d targets", n, len(y))
	}
	p := len(X[0])
	maxFeatures := p / 3
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	rng := rand.New(rand.NewSource(f.Seed))
	f.Trees = make([]*RegressionTree, 0, f.NumTrees)
	for t := 0; t < f.NumTrees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		tree := NewRegressionTree(f.MaxDepth, f.MinLeaf, maxFeatures)
		if err := tree.FitIndexed(X, y, idx, rng); err != nil {
			return fmt.Errorf("forest fit tree %d: %w", t, err)
		}
		f.Trees = append(f.Trees, tree)
	}
	return nil
}

// Predict returns the mean of all tree predictions.
func (f *RandomForest) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.Predict(x)
	}
	return sum / float64(len(f.Trees))
}
