package model

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Candidate names are stable identifiers: reporting, the selector and the
// run registry all refer to them.
const (
	NameOLS            = "ols"
	NameOLSInteraction = "ols_interacao"
	NameRobust         = "regressao_robusta"
	NamePolynomial     = "regressao_polinomial"
	NameRandomForest   = "random_forest"
	NameGradientBoost  = "gradient_boosting"
)

// Candidate is the outcome of fitting one model family: either a metric
// set (plus family-specific extras) or the error that excluded it. Failure
// is a value here so the caller decides deterministically how to proceed.
type Candidate struct {
	Name    string
	Metrics Metrics
	// OLS carries the coefficient table for linear-family candidates.
	OLS *OLSResult
	// Importances are per-feature scores for tree ensembles.
	Importances map[string]float64
	// ArtifactPath points at the persisted estimator for tree ensembles.
	ArtifactPath string
	// Predicted holds full-data in-sample predictions, used by plotting.
	Predicted []float64

	Err error
}

// OK reports whether the candidate fitted successfully.
func (c Candidate) OK() bool { return c.Err == nil }

// Bank fits the fixed candidate set against one input matrix.
type Bank struct {
	Seed        int64
	Folds       int
	ForestTrees int
	BoostRounds int
	// Interaction optionally names two predictors for an extra OLS
	// variant with their two-way product.
	Interaction []string

	Log *slog.Logger
}

// Run fits every candidate sequentially (deterministic logging order).
// Each candidate's failure is caught, logged and recorded; it never aborts
// the bank. ArtifactDir receives persisted tree-ensemble estimators keyed
// by runID.
func (b *Bank) Run(m *Matrix, artifactDir, runID string) []Candidate {
	kf := KFold{K: b.Folds, Seed: b.Seed}
	var out []Candidate

	out = append(out, b.fitOLS(m, NameOLS))

	if len(b.Interaction) == 2 {
		if im, ok := m.WithInteraction(b.Interaction[0], b.Interaction[1]); ok {
			out = append(out, b.fitOLS(im, NameOLSInteraction))
		} else {
			b.Log.Warn("interaction predictors not both present, skipping variant",
				"termos", b.Interaction)
		}
	}

	out = append(out, b.fitCV(m, NameRobust, kf, func() Estimator { return NewHuber() }))
	out = append(out, b.fitCV(m, NamePolynomial, kf, func() Estimator { return NewPolynomial() }))
	out = append(out, b.fitForest(m, kf, artifactDir, runID))
	out = append(out, b.fitBoost(m, kf, artifactDir, runID))

	for _, c := range out {
		if c.Err != nil {
			b.Log.Warn("candidate excluded from comparison", "modelo", c.Name, "err", c.Err)
		}
	}
	return out
}

func (b *Bank) fitOLS(m *Matrix, name string) Candidate {
	c := Candidate{Name: name, Metrics: NewMetrics()}
	res, err := FitOLS(m)
	if err != nil {
		c.Err = fmt.Errorf("%s: %w", name, err)
		return c
	}
	c.OLS = res
	c.Metrics.R2 = res.R2
	c.Metrics.AdjR2 = res.AdjR2
	c.Metrics.AIC = res.AIC
	c.Metrics.BIC = res.BIC
	c.Predicted = res.Predict(m.Rows)
	b.Log.Info("candidate fitted", "modelo", name,
		"r2", res.R2, "r2_ajustado", res.AdjR2, "aic", res.AIC, "bic", res.BIC, "obs", res.NObs)
	return c
}

func (b *Bank) fitCV(m *Matrix, name string, kf KFold, newEst func() Estimator) Candidate {
	c := Candidate{Name: name, Metrics: NewMetrics()}
	cv, err := CrossValidate(newEst, m.Rows, m.Y, kf)
	if err != nil {
		c.Err = fmt.Errorf("%s: %w", name, err)
		return c
	}
	c.Metrics.CVR2 = cv.R2
	c.Metrics.CVRMSE = cv.RMSE
	c.Metrics.CVMAE = cv.MAE

	est := newEst()
	if err := est.Fit(m.Rows, m.Y); err != nil {
		c.Err = fmt.Errorf("%s: full fit: %w", name, err)
		return c
	}
	c.Predicted = est.Predict(m.Rows)
	b.Log.Info("candidate fitted", "modelo", name,
		"cv_r2", cv.R2, "cv_rmse", cv.RMSE, "cv_mae", cv.MAE)
	return c
}

func (b *Bank) fitForest(m *Matrix, kf KFold, artifactDir, runID string) Candidate {
	c := b.fitCV(m, NameRandomForest, kf, func() Estimator {
		return NewForest(b.ForestTrees, b.Seed)
	})
	if c.Err != nil {
		return c
	}
	// Refit on the full dataset for importances and the persisted artifact.
	f := NewForest(b.ForestTrees, b.Seed)
	if err := f.Fit(m.Rows, m.Y); err != nil {
		c.Err = fmt.Errorf("%s: full fit: %w", NameRandomForest, err)
		return c
	}
	c.Importances = f.Importances(m.Features)
	c.Predicted = f.Predict(m.Rows)
	path := filepath.Join(artifactDir, fmt.Sprintf("random_forest_%s.gob", runID))
	if err := f.Save(path); err != nil {
		c.Err = fmt.Errorf("%s: persist: %w", NameRandomForest, err)
		return c
	}
	c.ArtifactPath = path
	return c
}

func (b *Bank) fitBoost(m *Matrix, kf KFold, artifactDir, runID string) Candidate {
	c := b.fitCV(m, NameGradientBoost, kf, func() Estimator {
		return NewBoost(b.BoostRounds, b.Seed)
	})
	if c.Err != nil {
		return c
	}
	gb := NewBoost(b.BoostRounds, b.Seed)
	if err := gb.Fit(m.Rows, m.Y); err != nil {
		c.Err = fmt.Errorf("%s: full fit: %w", NameGradientBoost, err)
		return c
	}
	c.Predicted = gb.Predict(m.Rows)
	path := filepath.Join(artifactDir, fmt.Sprintf("gradient_boosting_%s.gob", runID))
	if err := gb.Save(path); err != nil {
		c.Err = fmt.Errorf("%s: persist: %w", NameGradientBoost, err)
		return c
	}
	c.ArtifactPath = path
	return c
}
