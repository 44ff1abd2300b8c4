// Package mining reduces the numeric columns to two principal components
// and clusters respondents over them, enriching the dataset with pca1,
// pca2 and cluster columns.
package mining

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNoNumericColumns is returned when nothing numeric is available to
// mine.
var ErrNoNumericColumns = errors.New("no numeric columns available for mining")

// Result carries the component scores, cluster labels and diagnostics.
type Result struct {
	PCA1              []float64
	PCA2              []float64
	Cluster           []int
	ExplainedVariance float64 // fraction explained by the two components
	Inertia           float64
}

// Run standardizes the numeric columns (missing values are replaced by the
// column mean, which is neutral after centering), projects them onto the
// first two principal components via SVD and clusters the scores with a
// seeded K-Means.
func Run(cols map[string][]float64, order []string, k int, seed int64) (*Result, error) {
	if len(order) == 0 {
		return nil, ErrNoNumericColumns
	}
	n := len(cols[order[0]])
	p := len(order)
	if n == 0 {
		return nil, ErrNoNumericColumns
	}

	X := mat.NewDense(n, p, nil)
	for j, name := range order {
		col := cols[name]
		clean := make([]float64, 0, n)
		for _, v := range col {
			if !math.IsNaN(v) {
				clean = append(clean, v)
			}
		}
		mean, std := 0.0, 1.0
		if len(clean) > 0 {
			mean = stat.Mean(clean, nil)
			if len(clean) > 1 {
				std = stat.StdDev(clean, nil)
			}
		}
		if std == 0 {
			std = 1
		}
		for i := 0; i < n; i++ {
			v := col[i]
			if math.IsNaN(v) {
				v = mean
			}
			X.Set(i, j, (v-mean)/std)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(X, mat.SVDThin); !ok {
		return nil, errors.New("pca: svd did not converge")
	}
	values := svd.Values(nil)
	var u mat.Dense
	svd.UTo(&u)

	res := &Result{PCA1: make([]float64, n), PCA2: make([]float64, n)}
	for i := 0; i < n; i++ {
		res.PCA1[i] = u.At(i, 0) * values[0]
		if len(values) > 1 {
			res.PCA2[i] = u.At(i, 1) * values[1]
		}
	}

	var total float64
	for _, s := range values {
		total += s * s
	}
	if total > 0 {
		top := values[0] * values[0]
		if len(values) > 1 {
			top += values[1] * values[1]
		}
		res.ExplainedVariance = top / total
	}

	scores := make([][]float64, n)
	for i := 0; i < n; i++ {
		scores[i] = []float64{res.PCA1[i], res.PCA2[i]}
	}
	labels, inertia, err := kMeans(scores, k, seed, 10)
	if err != nil {
		return nil, err
	}
	res.Cluster = labels
	res.Inertia = inertia
	return res, nil
}

// kMeans runs Lloyd's algorithm nInit times from seeded random starts and
// keeps the assignment with the lowest inertia.
func kMeans(points [][]float64, k int, seed int64, nInit int) ([]int, float64, error) {
	n := len(points)
	if k <= 0 || n < k {
		return nil, 0, fmt.Errorf("kmeans: %d points for %d clusters", n, k)
	}
	rng := rand.New(rand.NewSource(seed))
	bestInertia := math.Inf(1)
	var bestLabels []int

	for init := 0; init < nInit; init++ {
		centers := make([][]float64, k)
		for i, idx := range rng.Perm(n)[:k] {
			centers[i] = append([]float64{}, points[idx]...)
		}
		labels := make([]int, n)
		for iter := 0; iter < 100; iter++ {
			changed := false
			for i, pt := range points {
				best, bestD := 0, math.Inf(1)
				for c, ctr := range centers {
					d := sqDist(pt, ctr)
					if d < bestD {
						best, bestD = c, d
					}
				}
				if labels[i] != best {
					labels[i] = best
					changed = true
				}
			}
			if !changed && iter > 0 {
				break
			}
			counts := make([]int, k)
			sums := make([][]float64, k)
			for c := range sums {
				sums[c] = make([]float64, len(points[0]))
			}
			for i, pt := range points {
				counts[labels[i]]++
				for d, v := range pt {
					sums[labels[i]][d] += v
				}
			}
			for c := range centers {
				if counts[c] == 0 {
					// Re-seed an empty cluster from a random point.
					centers[c] = append([]float64{}, points[rng.Intn(n)]...)
					continue
				}
				for d := range centers[c] {
					centers[c][d] = sums[c][d] / float64(counts[c])
				}
			}
		}
		inertia := 0.0
		for i, pt := range points {
			inertia += sqDist(pt, centers[labels[i]])
		}
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = append([]int{}, labels...)
		}
	}
	return bestLabels, bestInertia, nil
}

func sqDist(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
