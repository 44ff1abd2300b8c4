package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// design builds the n x (p+1) design matrix with a leading intercept
// column, optionally scaling each row by a weight (weighted least squares).
func design(rows [][]float64, weights []float64) *mat.Dense {
	n := len(rows)
	p := len(rows[0])
	X := mat.NewDense(n, p+1, nil)
	for i, row := range rows {
		w := 1.0
		if weights != nil {
			w = math.Sqrt(weights[i])
		}
		X.Set(i, 0, w)
		for j, v := range row {
			X.Set(i, j+1, v*w)
		}
	}
	return X
}

// lstsq solves min ||Xb - y|| by ridge-stabilized normal equations. The
// tiny ridge keeps near-collinear designs (polynomial expansions) solvable
// without changing estimates at float precision for well-posed problems.
func lstsq(X *mat.Dense, y []float64) ([]float64, error) {
	_, p := X.Dims()
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	for j := 0; j < p; j++ {
		xtx.Set(j, j, xtx.At(j, j)+1e-9)
	}
	var xty mat.VecDense
	xty.MulVec(X.T(), mat.NewVecDense(len(y), y))
	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("least squares solve: %w", err)
	}
	out := make([]float64, p)
	for j := 0; j < p; j++ {
		out[j] = beta.AtVec(j)
	}
	return out, nil
}

// predictLinear applies an intercept-first coefficient vector to raw rows.
func predictLinear(coefs []float64, rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		v := coefs[0]
		for j, x := range row {
			v += coefs[j+1] * x
		}
		out[i] = v
	}
	return out
}

func meanOf(vals []float64) float64 {
	s := 0.0
	for _, v := range vals {
		s += v
	}
	return s / float64(len(vals))
}

// scoreRegression computes RMSE, MAE and R² of predictions against truth.
func scoreRegression(yTrue, yPred []float64) (rmse, mae, r2 float64, err error) {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0, 0, 0, errors.New("mismatched prediction lengths")
	}
	mean := meanOf(yTrue)
	var sse, sae, sst float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		sse += d * d
		sae += math.Abs(d)
		t := yTrue[i] - mean
		sst += t * t
	}
	n := float64(len(yTrue))
	rmse = math.Sqrt(sse / n)
	mae = sae / n
	if sst == 0 {
		return rmse, mae, 0, nil
	}
	return rmse, mae, 1 - sse/sst, nil
}
