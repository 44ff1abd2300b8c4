package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exactMatrix builds y = 2 + 3*x1 - x2 with no noise.
func exactMatrix() *Matrix {
	rows := [][]float64{
		{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 1}, {2, 3}, {3, 2}, {4, 1},
	}
	y := make([]float64, len(rows))
	for i, r := range rows {
		y[i] = 2 + 3*r[0] - r[1]
	}
	return &Matrix{Target: "alvo", Features: []string{"a", "b"}, Y: y, Rows: rows}
}

func TestFitOLSRecoversExactCoefficients(t *testing.T) {
	res, err := FitOLS(exactMatrix())
	require.NoError(t, err)
	require.Len(t, res.Coefficients, 3)

	assert.Equal(t, "const", res.Coefficients[0].Name)
	assert.InDelta(t, 2.0, res.Coefficients[0].Estimate, 1e-9)
	assert.InDelta(t, 3.0, res.Coefficients[1].Estimate, 1e-9)
	assert.InDelta(t, -1.0, res.Coefficients[2].Estimate, 1e-9)
	assert.InDelta(t, 1.0, res.R2, 1e-12)
	assert.Nil(t, res.NameMap)
}

func TestFitOLSPredictMatchesFit(t *testing.T) {
	m := exactMatrix()
	res, err := FitOLS(m)
	require.NoError(t, err)
	pred := res.Predict(m.Rows)
	for i := range pred {
		assert.InDelta(t, m.Y[i], pred[i], 1e-9)
	}
}

func TestFitOLSSanitizesUnfriendlyLabels(t *testing.T) {
	m := exactMatrix()
	m.Features = []string{"Apoio: desenvolvimento", "índice b"}
	res, err := FitOLS(m)
	require.NoError(t, err)
	require.NotNil(t, res.NameMap)
	assert.Equal(t, "x1", res.Coefficients[1].Name)
	assert.Equal(t, "Apoio: desenvolvimento", res.Coefficients[1].Original)
	assert.Equal(t, "Apoio: desenvolvimento", res.NameMap["x1"])
	assert.Equal(t, "índice b", res.NameMap["x2"])
}

func TestFitOLSTooFewObservations(t *testing.T) {
	m := &Matrix{
		Features: []string{"a", "b"},
		Y:        []float64{1, 2, 3},
		Rows:     [][]float64{{1, 2}, {2, 3}, {3, 4}},
	}
	_, err := FitOLS(m)
	require.Error(t, err)
}

func TestFitOLSSingularDesign(t *testing.T) {
	// Second feature is an exact copy of the first.
	rows := [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}, {6, 6}}
	m := &Matrix{
		Features: []string{"a", "a_copy"},
		Y:        []float64{1, 2, 3, 4, 5, 6},
		Rows:     rows,
	}
	_, err := FitOLS(m)
	require.Error(t, err)
}

func TestSignificantExcludesIntercept(t *testing.T) {
	res := &OLSResult{Coefficients: []Coefficient{
		{Name: "const", PValue: 0.0001},
		{Name: "a", PValue: 0.01},
		{Name: "b", PValue: 0.2},
	}}
	sig := res.Significant(0.05)
	require.Len(t, sig, 1)
	assert.Equal(t, "a", sig[0].Name)
}

func TestFitOLSInformationCriteriaOrdering(t *testing.T) {
	// With noise, BIC penalizes harder than AIC for n >= 8.
	rows := [][]float64{
		{0.1, 1.2}, {1.3, 0.2}, {0.4, 2.1}, {1.9, 1.1},
		{2.2, 3.0}, {2.8, 2.4}, {3.5, 1.9}, {4.1, 0.7},
		{4.4, 2.6}, {5.0, 3.3},
	}
	y := []float64{2.2, 5.7, 0.5, 6.5, 5.9, 8.1, 10.4, 13.6, 12.8, 14.1}
	m := &Matrix{Features: []string{"a", "b"}, Y: y, Rows: rows}
	res, err := FitOLS(m)
	require.NoError(t, err)
	assert.Greater(t, res.BIC, res.AIC)
	assert.False(t, math.IsNaN(res.AIC))
	for _, c := range res.Coefficients {
		assert.GreaterOrEqual(t, c.PValue, 0.0)
		assert.LessOrEqual(t, c.PValue, 1.0)
		assert.LessOrEqual(t, c.CILow, c.CIHigh)
	}
}
