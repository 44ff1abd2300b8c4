package model

import (
	"fmt"
	"math"
	"regexp"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Coefficient is one row of the OLS coefficient table. Name is the
// reporting-safe identifier; Original preserves the raw column label when
// sanitization was needed.
type Coefficient struct {
	Name     string
	Original string
	Estimate float64
	StdErr   float64
	TValue   float64
	PValue   float64
	CILow    float64
	CIHigh   float64
}

// OLSResult carries the fitted linear model and its statistical summary.
type OLSResult struct {
	Coefficients []Coefficient
	R2           float64
	AdjR2        float64
	AIC          float64
	BIC          float64
	NObs         int
	// NameMap maps sanitized feature names back to the original labels;
	// empty when every label was already a clean identifier.
	NameMap map[string]string

	coefs []float64
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// sanitizeNames replaces labels containing characters a formula or report
// layer cannot carry (colons, spaces, punctuation in full questionnaire
// item texts) with positional names, keeping a mapping for reporting.
func sanitizeNames(names []string) ([]string, map[string]string) {
	needs := false
	for _, n := range names {
		if !identRe.MatchString(n) {
			needs = true
			break
		}
	}
	if !needs {
		return names, nil
	}
	clean := make([]string, len(names))
	mapping := make(map[string]string, len(names))
	for i, n := range names {
		clean[i] = fmt.Sprintf("x%d", i+1)
		mapping[clean[i]] = n
	}
	return clean, mapping
}

// FitOLS fits ordinary least squares with an intercept and computes the
// full inferential summary: coefficient estimates, standard errors,
// two-sided p-values, 95% confidence intervals, R², adjusted R², AIC and
// BIC. A singular design is a candidate failure, not a panic.
func FitOLS(m *Matrix) (*OLSResult, error) {
	n := len(m.Y)
	p := len(m.Features)
	k := p + 1 // estimated coefficients including intercept
	if n <= k {
		return nil, fmt.Errorf("ols: %d observations for %d coefficients", n, k)
	}

	X := design(m.Rows, nil)
	yVec := mat.NewVecDense(n, m.Y)

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("ols: singular design matrix: %w", err)
	}
	var xty mat.VecDense
	xty.MulVec(X.T(), yVec)
	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	coefs := make([]float64, k)
	for j := 0; j < k; j++ {
		coefs[j] = beta.AtVec(j)
	}
	pred := predictLinear(coefs, m.Rows)

	mean := meanOf(m.Y)
	var rss, tss float64
	for i, yv := range m.Y {
		d := yv - pred[i]
		rss += d * d
		t := yv - mean
		tss += t * t
	}
	dof := float64(n - k)
	sigma2 := rss / dof

	r2 := 0.0
	if tss > 0 {
		r2 = 1 - rss/tss
	}
	adjR2 := 1 - (1-r2)*float64(n-1)/dof

	// Gaussian log-likelihood based information criteria.
	llf := -float64(n) / 2 * (math.Log(2*math.Pi) + math.Log(rss/float64(n)) + 1)
	aic := -2*llf + 2*float64(k)
	bic := -2*llf + float64(k)*math.Log(float64(n))

	st := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	tCrit := st.Quantile(0.975)

	names, mapping := sanitizeNames(m.Features)
	res := &OLSResult{
		R2: r2, AdjR2: adjR2, AIC: aic, BIC: bic, NObs: n,
		NameMap: mapping,
		coefs:   coefs,
	}
	for j := 0; j < k; j++ {
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))
		est := coefs[j]
		tv := math.Inf(1)
		pv := 0.0
		if se > 0 {
			tv = est / se
			pv = 2 * st.CDF(-math.Abs(tv))
		}
		c := Coefficient{
			Estimate: est, StdErr: se, TValue: tv, PValue: pv,
			CILow: est - tCrit*se, CIHigh: est + tCrit*se,
		}
		if j == 0 {
			c.Name, c.Original = "const", "const"
		} else {
			c.Name = names[j-1]
			c.Original = m.Features[j-1]
		}
		res.Coefficients = append(res.Coefficients, c)
	}
	return res, nil
}

// Predict applies the fitted coefficients to raw feature rows.
func (r *OLSResult) Predict(rows [][]float64) []float64 {
	return predictLinear(r.coefs, rows)
}

// Significant returns the coefficients (intercept excluded) whose p-value
// is at or below alpha.
func (r *OLSResult) Significant(alpha float64) []Coefficient {
	var out []Coefficient
	for _, c := range r.Coefficients {
		if c.Name == "const" {
			continue
		}
		if c.PValue <= alpha {
			out = append(out, c)
		}
	}
	return out
}
