package model

import (
	"fmt"
	"math/rand"
)

// KFold shuffles observation indices with a fixed seed and partitions them
// into K folds, so fold assignment is deterministic per seed.
type KFold struct {
	K    int
	Seed int64
}

// Split returns the test-index list of each fold.
func (kf KFold) Split(n int) [][]int {
	perm := rand.New(rand.NewSource(kf.Seed)).Perm(n)
	folds := make([][]int, kf.K)
	for i, idx := range perm {
		f := i % kf.K
		folds[f] = append(folds[f], idx)
	}
	return folds
}

// CVMetrics are fold-averaged out-of-sample scores.
type CVMetrics struct {
	RMSE float64
	MAE  float64
	R2   float64
}

// CrossValidate trains a fresh estimator per fold on the complement and
// scores it on the held-out fold, averaging arithmetically across folds.
func CrossValidate(newEst func() Estimator, X [][]float64, y []float64, kf KFold) (CVMetrics, error) {
	n := len(X)
	if n < kf.K {
		return CVMetrics{}, fmt.Errorf("cross-validation: %d observations for %d folds", n, kf.K)
	}
	folds := kf.Split(n)
	inTest := make([]bool, n)

	var out CVMetrics
	for f, test := range folds {
		if len(test) == 0 {
			return CVMetrics{}, fmt.Errorf("cross-validation: empty fold %d", f)
		}
		for i := range inTest {
			inTest[i] = false
		}
		for _, i := range test {
			inTest[i] = true
		}
		var trX, teX [][]float64
		var trY, teY []float64
		for i := 0; i < n; i++ {
			if inTest[i] {
				teX = append(teX, X[i])
				teY = append(teY, y[i])
			} else {
				trX = append(trX, X[i])
				trY = append(trY, y[i])
			}
		}
		est := newEst()
		if err := est.Fit(trX, trY); err != nil {
			return CVMetrics{}, fmt.Errorf("fold %d fit: %w", f, err)
		}
		rmse, mae, r2, err := scoreRegression(teY, est.Predict(teX))
		if err != nil {
			return CVMetrics{}, fmt.Errorf("fold %d score: %w", f, err)
		}
		out.RMSE += rmse
		out.MAE += mae
		out.R2 += r2
	}
	k := float64(kf.K)
	out.RMSE /= k
	out.MAE /= k
	out.R2 /= k
	return out, nil
}
