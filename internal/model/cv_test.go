package model

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKFoldSplitDeterministicPerSeed(t *testing.T) {
	kf := KFold{K: 5, Seed: 42}
	a := kf.Split(50)
	b := kf.Split(50)
	require.Equal(t, a, b)

	other := KFold{K: 5, Seed: 43}.Split(50)
	assert.NotEqual(t, a, other)
}

func TestKFoldSplitCoversEveryIndexOnce(t *testing.T) {
	folds := KFold{K: 4, Seed: 1}.Split(22)
	var all []int
	for _, f := range folds {
		all = append(all, f...)
	}
	require.Len(t, all, 22)
	sort.Ints(all)
	for i, idx := range all {
		assert.Equal(t, i, idx)
	}
}

func TestCrossValidateDeterministic(t *testing.T) {
	n := 60
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i) / 10
		X[i] = []float64{x}
		y[i] = 1 + 2*x
	}
	kf := KFold{K: 5, Seed: 42}
	newEst := func() Estimator { return NewHuber() }

	first, err := CrossValidate(newEst, X, y, kf)
	require.NoError(t, err)
	second, err := CrossValidate(newEst, X, y, kf)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A noiseless linear relation scores near-perfectly out of sample.
	assert.InDelta(t, 1.0, first.R2, 1e-6)
	assert.InDelta(t, 0.0, first.RMSE, 1e-6)
}

func TestCrossValidateTooFewObservations(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	y := []float64{1, 2, 3}
	_, err := CrossValidate(func() Estimator { return NewHuber() }, X, y, KFold{K: 5, Seed: 1})
	require.Error(t, err)
}
