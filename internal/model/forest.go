package model

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math/rand"
	"os"
)

// Forest is a bootstrap-aggregated ensemble of regression trees with a
// fixed seed for reproducible fits.
type Forest struct {
	NumTrees int
	MaxDepth int
	MinLeaf  int
	Seed     int64

	Trees         []*Tree
	RawImportance []float64
}

// NewForest returns a forest with the pipeline's default shape.
func NewForest(numTrees int, seed int64) *Forest {
	if numTrees <= 0 {
		numTrees = 300
	}
	return &Forest{NumTrees: numTrees, MaxDepth: 12, MinLeaf: 2, Seed: seed}
}

// Fit grows the ensemble on bootstrap samples. All randomness (bootstrap
// draws and per-split feature subsets) flows from one seeded source, so
// the same seed and input yield an identical forest.
func (f *Forest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("forest: empty input")
	}
	n := len(X)
	p := len(X[0])
	mtry := p / 3
	if mtry < 1 {
		mtry = 1
	}
	rng := rand.New(rand.NewSource(f.Seed))
	f.Trees = make([]*Tree, 0, f.NumTrees)
	f.RawImportance = make([]float64, p)
	for t := 0; t < f.NumTrees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		tree := &Tree{MaxDepth: f.MaxDepth, MinLeaf: f.MinLeaf}
		tree.grow(X, y, idx, mtry, rng, f.RawImportance)
		f.Trees = append(f.Trees, tree)
	}
	return nil
}

// Predict averages the tree predictions.
func (f *Forest) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		s := 0.0
		for _, t := range f.Trees {
			s += t.predictRow(row)
		}
		out[i] = s / float64(len(f.Trees))
	}
	return out
}

// Importances returns per-feature impurity-reduction scores normalized to
// sum to one, keyed by the given feature names.
func (f *Forest) Importances(features []string) map[string]float64 {
	total := 0.0
	for _, v := range f.RawImportance {
		total += v
	}
	out := make(map[string]float64, len(features))
	for i, name := range features {
		if i >= len(f.RawImportance) {
			break
		}
		if total > 0 {
			out[name] = f.RawImportance[i] / total
		} else {
			out[name] = 0
		}
	}
	return out
}

// Save serializes the fitted forest so later stages (and later runs) can
// load it independently of the fitting process.
func (f *Forest) Save(path string) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer w.Close()
	if err := gob.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("encode forest: %w", err)
	}
	return nil
}

// LoadForest reads a persisted forest artifact.
func LoadForest(path string) (*Forest, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer r.Close()
	var f Forest
	if err := gob.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode forest: %w", err)
	}
	return &f, nil
}
