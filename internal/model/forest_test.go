package model

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisyData builds y = 5*x1 + noise with an irrelevant second feature.
func noisyData(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1 := rng.Float64() * 10
		x2 := rng.Float64() * 10
		X[i] = []float64{x1, x2}
		y[i] = 5*x1 + rng.NormFloat64()*0.5
	}
	return X, y
}

func TestForestDeterministicPerSeed(t *testing.T) {
	X, y := noisyData(120, 7)

	a := NewForest(30, 42)
	require.NoError(t, a.Fit(X, y))
	b := NewForest(30, 42)
	require.NoError(t, b.Fit(X, y))
	assert.Equal(t, a.Predict(X), b.Predict(X))

	c := NewForest(30, 99)
	require.NoError(t, c.Fit(X, y))
	assert.NotEqual(t, a.Predict(X), c.Predict(X))
}

func TestForestImportancesFavorInformativeFeature(t *testing.T) {
	X, y := noisyData(200, 3)
	f := NewForest(50, 42)
	require.NoError(t, f.Fit(X, y))

	imp := f.Importances([]string{"informativa", "ruido"})
	require.Len(t, imp, 2)
	total := imp["informativa"] + imp["ruido"]
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, imp["informativa"], imp["ruido"])
}

func TestForestGobRoundTrip(t *testing.T) {
	X, y := noisyData(80, 11)
	f := NewForest(20, 42)
	require.NoError(t, f.Fit(X, y))

	path := filepath.Join(t.TempDir(), "forest.gob")
	require.NoError(t, f.Save(path))

	loaded, err := LoadForest(path)
	require.NoError(t, err)
	assert.Equal(t, f.Predict(X), loaded.Predict(X))
}

func TestBoostReducesTrainingError(t *testing.T) {
	X, y := noisyData(150, 5)
	gb := NewBoost(80, 42)
	require.NoError(t, gb.Fit(X, y))

	pred := gb.Predict(X)
	var rss, tss float64
	mean := meanOf(y)
	for i := range y {
		d := y[i] - pred[i]
		rss += d * d
		m := y[i] - mean
		tss += m * m
	}
	assert.Less(t, rss, tss/4, "boosting should explain most of the variance in-sample")
}

func TestBoostGobRoundTrip(t *testing.T) {
	X, y := noisyData(80, 13)
	gb := NewBoost(30, 42)
	require.NoError(t, gb.Fit(X, y))

	path := filepath.Join(t.TempDir(), "boost.gob")
	require.NoError(t, gb.Save(path))

	loaded, err := LoadBoost(path)
	require.NoError(t, err)
	assert.Equal(t, gb.Predict(X), loaded.Predict(X))
}

func TestHuberResistsOutliers(t *testing.T) {
	// Clean line plus a single wild outlier.
	X := make([][]float64, 0, 21)
	y := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		x := float64(i)
		X = append(X, []float64{x})
		y = append(y, 2*x+1)
	}
	X = append(X, []float64{10})
	y = append(y, 500)

	h := NewHuber()
	require.NoError(t, h.Fit(X, y))
	pred := h.Predict([][]float64{{5}})
	assert.InDelta(t, 11.0, pred[0], 1.5)
	assert.False(t, math.IsNaN(pred[0]))
}

func TestPolynomialFitsQuadratic(t *testing.T) {
	X := make([][]float64, 0, 30)
	y := make([]float64, 0, 30)
	for i := 0; i < 30; i++ {
		x := float64(i-15) / 3
		X = append(X, []float64{x})
		y = append(y, 1+2*x+3*x*x)
	}
	p := NewPolynomial()
	require.NoError(t, p.Fit(X, y))
	pred := p.Predict([][]float64{{2}})
	assert.InDelta(t, 1+4+12, pred[0], 1e-6)
}
