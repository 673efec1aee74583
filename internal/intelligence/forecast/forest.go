package forecast

import (
	"errors"
	"math/rand"
	"sort"
)

// treeNode is either a split (left/right set) or a leaf carrying a value.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
}

func (n *treeNode) isLeaf() bool { return n.left == nil }

func (n *treeNode) predict(x []float64) float64 {
	for !n.isLeaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// regressionForest is a bagged ensemble of CART regression trees. Bootstrap
// samples are drawn from a seeded source so repeated fits are identical.
type regressionForest struct {
	trees    int
	maxDepth int
	minLeaf  int
	seed     int64
	roots    []*treeNode
}

func newRegressionForest(trees int, seed int64) *regressionForest {
	if trees <= 0 {
		trees = 50
	}
	return &regressionForest{
		trees:    trees,
		maxDepth: 12,
		minLeaf:  1,
		seed:     seed,
	}
}

func (f *regressionForest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("regression forest: empty or mismatched training data")
	}

	rng := rand.New(rand.NewSource(f.seed))
	n := len(X)
	f.roots = make([]*treeNode, 0, f.trees)
	for t := 0; t < f.trees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.roots = append(f.roots, f.grow(X, y, sample, 0))
	}
	return nil
}

func (f *regressionForest) Predict(x []float64) float64 {
	if len(f.roots) == 0 {
		return 0
	}
	sum := 0.0
	for _, root := range f.roots {
		sum += root.predict(x)
	}
	return sum / float64(len(f.roots))
}

func (f *regressionForest) grow(X [][]float64, y []float64, idx []int, depth int) *treeNode {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	count := float64(len(idx))
	leaf := &treeNode{value: sum / count}
	parentSSE := sumSq - sum*sum/count

	if depth >= f.maxDepth || len(idx) < 2*f.minLeaf || parentSSE <= 1e-12 {
		return leaf
	}

	feature, threshold, ok := f.bestSplit(X, y, idx, parentSSE)
	if !ok {
		return leaf
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      f.grow(X, y, left, depth+1),
		right:     f.grow(X, y, right, depth+1),
	}
}

// bestSplit scans every feature for the threshold with the lowest summed
// squared error of the two children.
func (f *regressionForest) bestSplit(X [][]float64, y []float64, idx []int, parentSSE float64) (int, float64, bool) {
	bestFeature, bestThreshold := -1, 0.0
	bestSSE := parentSSE - 1e-12

	sorted := make([]int, len(idx))
	for j := range X[idx[0]] {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return X[sorted[a]][j] < X[sorted[b]][j] })

		var total, totalSq float64
		for _, i := range sorted {
			total += y[i]
			totalSq += y[i] * y[i]
		}

		var leftSum, leftSq float64
		for k := 1; k < len(sorted); k++ {
			prev := sorted[k-1]
			leftSum += y[prev]
			leftSq += y[prev] * y[prev]

			if k < f.minLeaf || len(sorted)-k < f.minLeaf {
				continue
			}
			lo, hi := X[prev][j], X[sorted[k]][j]
			if lo == hi {
				continue
			}

			nl, nr := float64(k), float64(len(sorted)-k)
			rightSum, rightSq := total-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = j
				bestThreshold = (lo + hi) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}
