package model

import (
	"errors"
	"math"
	"sort"
)

// Huber is a robust linear regressor fitted by iteratively reweighted
// least squares with Huber weights, resistant to outlying responses.
type Huber struct {
	Delta   float64
	MaxIter int
	Tol     float64

	coefs []float64
}

// NewHuber returns a Huber regressor with the conventional 95%-efficiency
// tuning constant.
func NewHuber() *Huber {
	return &Huber{Delta: 1.345, MaxIter: 50, Tol: 1e-6}
}

// Fit estimates coefficients by IRLS: ordinary least squares start, then
// reweighting by the Huber function of scaled residuals until the
// coefficients stabilize.
func (h *Huber) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("huber: empty input")
	}
	d := design(X, nil)
	coefs, err := lstsq(d, y)
	if err != nil {
		return err
	}
	weights := make([]float64, len(y))
	for iter := 0; iter < h.MaxIter; iter++ {
		pred := predictLinear(coefs, X)
		resid := make([]float64, len(y))
		for i := range y {
			resid[i] = y[i] - pred[i]
		}
		scale := madScale(resid)
		if scale == 0 {
			break // perfect fit
		}
		for i, r := range resid {
			a := math.Abs(r) / scale
			if a <= h.Delta {
				weights[i] = 1
			} else {
				weights[i] = h.Delta / a
			}
		}
		next, err := lstsq(design(X, weights), weightVals(y, weights))
		if err != nil {
			return err
		}
		if maxAbsDiff(coefs, next) < h.Tol {
			coefs = next
			break
		}
		coefs = next
	}
	h.coefs = coefs
	return nil
}

// Predict applies the robust coefficients.
func (h *Huber) Predict(X [][]float64) []float64 {
	return predictLinear(h.coefs, X)
}

// madScale estimates residual scale by the normalized median absolute
// deviation.
func madScale(resid []float64) float64 {
	abs := make([]float64, len(resid))
	for i, r := range resid {
		abs[i] = math.Abs(r)
	}
	sort.Float64s(abs)
	med := abs[len(abs)/2]
	if len(abs)%2 == 0 {
		med = (abs[len(abs)/2-1] + abs[len(abs)/2]) / 2
	}
	return med * 1.4826
}

func weightVals(y, w []float64) []float64 {
	out := make([]float64, len(y))
	for i := range y {
		out[i] = y[i] * math.Sqrt(w[i])
	}
	return out
}

func maxAbsDiff(a, b []float64) float64 {
	m := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > m {
			m = d
		}
	}
	return m
}
