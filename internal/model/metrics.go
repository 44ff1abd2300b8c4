// Package model fits the candidate regression bank against the engineered
// indices and selects the best model by a fixed lexicographic criterion.
package model

import "math"

// Metrics holds the comparable fit statistics of one candidate. Fields that
// do not apply to a model family stay NaN (undefined), never zero: AIC/BIC
// exist only for the OLS family, cross-validated metrics only for the
// estimators evaluated by k-fold.
type Metrics struct {
	CVR2   float64
	CVRMSE float64
	CVMAE  float64
	R2     float64
	AdjR2  float64
	AIC    float64
	BIC    float64
}

// NewMetrics returns a Metrics with every field undefined.
func NewMetrics() Metrics {
	nan := math.NaN()
	return Metrics{CVR2: nan, CVRMSE: nan, CVMAE: nan, R2: nan, AdjR2: nan, AIC: nan, BIC: nan}
}

// Defined reports whether a metric value carries information.
func Defined(v float64) bool { return !math.IsNaN(v) }

// Estimator is the minimal train/predict surface shared by the
// cross-validated candidates.
type Estimator interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}
