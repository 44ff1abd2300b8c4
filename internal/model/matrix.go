package model

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoPredictors is returned when no usable feature columns survive
	// cleaning (all-missing or zero-variance columns removed).
	ErrNoPredictors = errors.New("no usable predictor columns")
	// ErrNoCompleteRows is returned when the joint row-wise drop of
	// missing values leaves nothing to fit.
	ErrNoCompleteRows = errors.New("no complete observations")
)

// Matrix is the row-aligned numeric input every candidate trains on.
// Incomplete rows have already been dropped jointly across target and
// features; nothing is imputed.
type Matrix struct {
	Target   string
	Features []string
	Y        []float64
	Rows     [][]float64 // Rows[i][j] is feature j of observation i
	// Dropped lists feature columns removed before fitting, with reasons,
	// for the stage log.
	Dropped []string
}

// Assemble builds the model input from the target column and the candidate
// feature columns. Features that are entirely missing or have zero variance
// are dropped; then rows with any missing value across target and surviving
// features are dropped jointly.
func Assemble(target string, y []float64, featureNames []string, cols map[string][]float64) (*Matrix, error) {
	m := &Matrix{Target: target}
	n := len(y)

	kept := make([][]float64, 0, len(featureNames))
	for _, name := range featureNames {
		col, ok := cols[name]
		if !ok || len(col) != n {
			m.Dropped = append(m.Dropped, name+" (ausente)")
			continue
		}
		switch classify(col) {
		case colAllMissing:
			m.Dropped = append(m.Dropped, name+" (sem valores)")
		case colConstant:
			m.Dropped = append(m.Dropped, name+" (variância zero)")
		default:
			m.Features = append(m.Features, name)
			kept = append(kept, col)
		}
	}
	if len(m.Features) == 0 {
		return nil, fmt.Errorf("target %s: %w", target, ErrNoPredictors)
	}

	for i := 0; i < n; i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		complete := true
		row := make([]float64, len(kept))
		for j, col := range kept {
			if math.IsNaN(col[i]) {
				complete = false
				break
			}
			row[j] = col[i]
		}
		if !complete {
			continue
		}
		m.Y = append(m.Y, y[i])
		m.Rows = append(m.Rows, row)
	}
	if len(m.Rows) == 0 {
		return nil, fmt.Errorf("target %s: %w", target, ErrNoCompleteRows)
	}
	return m, nil
}

// WithInteraction returns a copy of the matrix extended by the product of
// two named features, or false when either is absent.
func (m *Matrix) WithInteraction(a, b string) (*Matrix, bool) {
	ia, ib := -1, -1
	for i, f := range m.Features {
		if f == a {
			ia = i
		}
		if f == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return nil, false
	}
	out := &Matrix{
		Target:   m.Target,
		Features: append(append([]string{}, m.Features...), a+":"+b),
		Y:        m.Y,
		Rows:     make([][]float64, len(m.Rows)),
	}
	for i, row := range m.Rows {
		er := make([]float64, len(row)+1)
		copy(er, row)
		er[len(row)] = row[ia] * row[ib]
		out.Rows[i] = er
	}
	return out, true
}

const (
	colUsable = iota
	colAllMissing
	colConstant
)

func classify(col []float64) int {
	first := math.NaN()
	constant := true
	any := false
	for _, v := range col {
		if math.IsNaN(v) {
			continue
		}
		if !any {
			first = v
			any = true
			continue
		}
		if v != first {
			constant = false
		}
	}
	switch {
	case !any:
		return colAllMissing
	case constant:
		return colConstant
	default:
		return colUsable
	}
}
