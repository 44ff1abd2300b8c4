package model

import (
	"errors"
	"math"
)

// ErrNoCandidates is returned when every candidate failed to fit.
var ErrNoCandidates = errors.New("no successfully fitted candidates")

// Criterion describes the selection rule in the hand-off record.
const Criterion = "maior R² de validação cruzada; desempates por menor RMSE (CV), " +
	"maior R² ajustado, menor AIC, menor BIC"

// TargetStats summarizes the target column for the hand-off record.
type TargetStats struct {
	Mean float64 `json:"media"`
	Std  float64 `json:"desvio_padrao"`
	Min  float64 `json:"minimo"`
	Max  float64 `json:"maximo"`
	NObs int     `json:"observacoes"`
}

// SelectionRecord is the single hand-off contract consumed by the
// refinement, recommendation and report stages. Field names are stable;
// downstream consumers read them by name.
type SelectionRecord struct {
	RunID        string       `json:"run_id"`
	BestModel    string       `json:"melhor_modelo"`
	Criterion    string       `json:"criterio"`
	Target       string       `json:"variavel_alvo"`
	Features     []string     `json:"features"`
	ArtifactPath string       `json:"caminho_modelo,omitempty"`
	TargetStats  *TargetStats `json:"estatisticas_alvo,omitempty"`
}

// Select ranks the successfully fitted candidates by the fixed
// lexicographic priority: maximize CV R² (missing -inf), minimize CV RMSE
// (missing +inf), maximize adjusted R², minimize AIC, minimize BIC. Ties
// after all five criteria keep the first candidate encountered.
func Select(cands []Candidate) (*Candidate, error) {
	var best *Candidate
	var bestScore [5]float64
	for i := range cands {
		c := &cands[i]
		if !c.OK() {
			continue
		}
		score := scoreVector(c.Metrics)
		if best == nil || lexGreater(score, bestScore) {
			best = c
			bestScore = score
		}
	}
	if best == nil {
		return nil, ErrNoCandidates
	}
	return best, nil
}

// NewSelectionRecord assembles the hand-off record for a winner. The
// artifact path is included only for tree-ensemble winners; OLS winners
// are represented by their coefficient tables alone.
func NewSelectionRecord(runID string, winner *Candidate, target string, features []string, stats *TargetStats) SelectionRecord {
	rec := SelectionRecord{
		RunID:       runID,
		BestModel:   winner.Name,
		Criterion:   Criterion,
		Target:      target,
		Features:    features,
		TargetStats: stats,
	}
	if winner.Name == NameRandomForest || winner.Name == NameGradientBoost {
		rec.ArtifactPath = winner.ArtifactPath
	}
	return rec
}

// scoreVector maps metrics onto a maximize-all vector, folding the
// minimized criteria in as negations and missing values as -inf.
func scoreVector(m Metrics) [5]float64 {
	neg := math.Inf(-1)
	v := [5]float64{neg, neg, neg, neg, neg}
	if Defined(m.CVR2) {
		v[0] = m.CVR2
	}
	if Defined(m.CVRMSE) {
		v[1] = -m.CVRMSE
	}
	if Defined(m.AdjR2) {
		v[2] = m.AdjR2
	}
	if Defined(m.AIC) {
		v[3] = -m.AIC
	}
	if Defined(m.BIC) {
		v[4] = -m.BIC
	}
	return v
}

func lexGreater(a, b [5]float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

// ComputeTargetStats summarizes the modeled target values.
func ComputeTargetStats(y []float64) *TargetStats {
	if len(y) == 0 {
		return nil
	}
	mean := meanOf(y)
	lo, hi := math.Inf(1), math.Inf(-1)
	varSum := 0.0
	for _, v := range y {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		d := v - mean
		varSum += d * d
	}
	std := 0.0
	if len(y) > 1 {
		std = math.Sqrt(varSum / float64(len(y)-1))
	}
	return &TargetStats{Mean: mean, Std: std, Min: lo, Max: hi, NObs: len(y)}
}
