package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// TreeNode is one node of a fitted regression tree. Fields are exported for
// gob round-tripping.
type TreeNode struct {
	Leaf      bool
	Value     float64
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
}

// RegressionTree is a CART-style regression tree splitting on squared-error
// reduction. It is the base learner for both ensembles.
type RegressionTree struct {
	Root        *TreeNode
	MaxDepth    int
	MinLeaf     int
	MaxFeatures int // 0 means consider every feature at each split
}

// NewRegressionTree creates an unfitted tree.
func NewRegressionTree(maxDepth, minLeaf, maxFeatures int) *RegressionTree {
	return &RegressionTree{MaxDepth: maxDepth, MinLeaf: minLeaf, MaxFeatures: maxFeatures}
}

func (t *RegressionTree) Name() string { return "regression_tree" }

// Fit grows the tree on the full sample with no feature subsampling.
func (t *RegressionTree) Fit(X [][]float64, y []float64) error {
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.FitIndexed(X, y, idx, nil)
}

// FitIndexed grows the tree on the given row subset. rng drives feature
// subsampling and may be nil when MaxFeatures is 0.
func (t *RegressionTree) FitIndexed(X [][]float64, y []float64, idx []int, rng *rand.Rand) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("tree fit: %d rows, %d targets", len(X), len(y))
	}
	if len(idx) == 0 {
		return fmt.Errorf("tree fit: empty index set")
	}
	if t.MinLeaf < 1 {
		t.MinLeaf = 1
	}
	t.Root = t.grow(X, y, idx, 0, rng)
	return nil
}

// Predict walks the tree for one feature row.
func (t *RegressionTree) Predict(x []float64) float64 {
	n := t.Root
	for n != nil && !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	if n == nil {
		return 0
	}
	return n.Value
}

func (t *RegressionTree) grow(X [][]float64, y []float64, idx []int, depth int, rng *rand.Rand) *TreeNode {
	mean := meanAt(y, idx)
	if depth >= t.MaxDepth || len(idx) < 2*t.MinLeaf {
		return &TreeNode{Leaf: true, Value: mean}
	}

	feature, threshold, ok := t.bestSplit(X, y, idx, rng)
	if !ok {
		return &TreeNode{Leaf: true, Value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < t.MinLeaf || len(right) < t.MinLeaf {
		return &TreeNode{Leaf: true, Value: mean}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.grow(X, y, left, depth+1, rng),
		Right:     t.grow(X, y, right, depth+1, rng),
	}
}

// bestSplit scans candidate features for the split with the lowest total
// squared error, using prefix sums over rows sorted by feature value.
func (t *RegressionTree) bestSplit(X [][]float64, y []float64, idx []int, rng *rand.Rand) (int, float64, bool) {
	p := len(X[idx[0]])
	features := t.candidateFeatures(p, rng)

	bestCost := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	order := make([]int, len(idx))
	for _, f := range features {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		var leftSum, leftSq float64
		totalSum, totalSq := sumsAt(y, order)

		for k := 0; k < len(order)-1; k++ {
			v := y[order[k]]
			leftSum += v
			leftSq += v * v

			cur, next := X[order[k]][f], X[order[k+1]][f]
			if cur == next {
				continue
			}
			nl, nr := k+1, len(order)-k-1
			if nl < t.MinLeaf || nr < t.MinLeaf {
				continue
			}
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			cost := (leftSq - leftSum*leftSum/float64(nl)) + (rightSq - rightSum*rightSum/float64(nr))
			if cost < bestCost {
				bestCost = cost
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func (t *RegressionTree) candidateFeatures(p int, rng *rand.Rand) []int {
	if t.MaxFeatures <= 0 || t.MaxFeatures >= p || rng == nil {
		all := make([]int, p)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rng.Perm(p)
	sub := perm[:t.MaxFeatures]
	sort.Ints(sub)
	return sub
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func sumsAt(y []float64, idx []int) (sum, sq float64) {
	for _, i := range idx {
		v := y[i]
		sum += v
		sq += v * v
	}
	return sum, sq
}
