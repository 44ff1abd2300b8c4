package model

import "errors"

// Polynomial is a degree-2 polynomial-expansion linear regressor: the
// feature space is extended with squares and pairwise products before an
// ordinary least-squares fit.
type Polynomial struct {
	coefs []float64
}

// NewPolynomial returns an unfitted degree-2 regressor.
func NewPolynomial() *Polynomial { return &Polynomial{} }

// Fit expands the features and solves the least-squares problem.
func (p *Polynomial) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("polynomial: empty input")
	}
	ex := expandDegree2(X)
	coefs, err := lstsq(design(ex, nil), y)
	if err != nil {
		return err
	}
	p.coefs = coefs
	return nil
}

// Predict applies the fitted coefficients to the expanded features.
func (p *Polynomial) Predict(X [][]float64) []float64 {
	return predictLinear(p.coefs, expandDegree2(X))
}

// expandDegree2 appends x_i*x_j for i <= j to each row.
func expandDegree2(X [][]float64) [][]float64 {
	if len(X) == 0 {
		return nil
	}
	d := len(X[0])
	out := make([][]float64, len(X))
	for r, row := range X {
		ex := make([]float64, 0, d+d*(d+1)/2)
		ex = append(ex, row...)
		for i := 0; i < d; i++ {
			for j := i; j < d; j++ {
				ex = append(ex, row[i]*row[j])
			}
		}
		out[r] = ex
	}
	return out
}
