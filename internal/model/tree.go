package model

import (
	"math/rand"
	"sort"
)

// Node is one split (or leaf) of a regression tree. Fields are exported
// for gob serialization of persisted ensembles.
type Node struct {
	Feature   int
	Threshold float64
	Left      *Node
	Right     *Node
	Value     float64
	Leaf      bool
}

// Tree is a CART regression tree grown by greedy variance reduction.
type Tree struct {
	Root     *Node
	MaxDepth int
	MinLeaf  int
}

// grow fits the tree on the rows selected by idx. When mtry < feature
// count, each split considers a random feature subset drawn from rng
// (random-forest mode). importances accumulates the total squared-error
// reduction attributed to each feature.
func (t *Tree) grow(X [][]float64, y []float64, idx []int, mtry int, rng *rand.Rand, importances []float64) {
	t.Root = t.build(X, y, idx, 0, mtry, rng, importances)
}

func (t *Tree) build(X [][]float64, y []float64, idx []int, depth, mtry int, rng *rand.Rand, importances []float64) *Node {
	mean, sse := meanSSE(y, idx)
	if depth >= t.MaxDepth || len(idx) < 2*t.MinLeaf || sse == 0 {
		return &Node{Leaf: true, Value: mean}
	}

	p := len(X[0])
	features := featureSubset(p, mtry, rng)

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0
	var bestLeft, bestRight []int

	for _, f := range features {
		sorted := make([]int, len(idx))
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		// Prefix sums over the sorted order let each split point be
		// scored in constant time.
		var sumL, sqL float64
		sumT, sqT := 0.0, 0.0
		for _, i := range sorted {
			sumT += y[i]
			sqT += y[i] * y[i]
		}
		for k := 0; k < len(sorted)-1; k++ {
			i := sorted[k]
			sumL += y[i]
			sqL += y[i] * y[i]
			nl := float64(k + 1)
			nr := float64(len(sorted) - k - 1)
			if k+1 < t.MinLeaf || len(sorted)-k-1 < t.MinLeaf {
				continue
			}
			if X[sorted[k+1]][f] == X[i][f] {
				continue // cannot split between equal values
			}
			sseL := sqL - sumL*sumL/nl
			sumR := sumT - sumL
			sseR := (sqT - sqL) - sumR*sumR/nr
			gain := sse - sseL - sseR
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (X[i][f] + X[sorted[k+1]][f]) / 2
				bestLeft = append([]int{}, sorted[:k+1]...)
				bestRight = append([]int{}, sorted[k+1:]...)
			}
		}
	}

	if bestFeature < 0 || bestGain <= 0 {
		return &Node{Leaf: true, Value: mean}
	}
	if importances != nil {
		importances[bestFeature] += bestGain
	}
	return &Node{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      t.build(X, y, bestLeft, depth+1, mtry, rng, importances),
		Right:     t.build(X, y, bestRight, depth+1, mtry, rng, importances),
	}
}

// predictRow walks the tree for one observation.
func (t *Tree) predictRow(row []float64) float64 {
	n := t.Root
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

func meanSSE(y []float64, idx []int) (mean, sse float64) {
	for _, i := range idx {
		mean += y[i]
	}
	mean /= float64(len(idx))
	for _, i := range idx {
		d := y[i] - mean
		sse += d * d
	}
	if sse < 1e-12 {
		sse = 0
	}
	return mean, sse
}

// featureSubset returns all features when mtry >= p, otherwise a random
// draw of mtry distinct feature indices.
func featureSubset(p, mtry int, rng *rand.Rand) []int {
	if mtry >= p || rng == nil {
		all := make([]int, p)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rng.Perm(p)
	sub := perm[:mtry]
	sort.Ints(sub)
	return sub
}
