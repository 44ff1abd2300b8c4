package model

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math/rand"
	"os"
)

// Boost is a gradient-boosting regressor: shallow trees fitted to the
// running residuals, shrunk by a learning rate.
type Boost struct {
	Rounds    int
	LearnRate float64
	MaxDepth  int
	MinLeaf   int
	Seed      int64

	Base  float64
	Trees []*Tree
}

// NewBoost returns a boosting regressor with the pipeline's defaults.
func NewBoost(rounds int, seed int64) *Boost {
	if rounds <= 0 {
		rounds = 200
	}
	return &Boost{Rounds: rounds, LearnRate: 0.05, MaxDepth: 3, MinLeaf: 3, Seed: seed}
}

// Fit boosts on the full sample; the seed fixes the (degenerate) feature
// subset order so repeated fits are identical.
func (b *Boost) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("boost: empty input")
	}
	n := len(X)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(b.Seed))

	b.Base = meanOf(y)
	current := make([]float64, n)
	for i := range current {
		current[i] = b.Base
	}
	resid := make([]float64, n)
	b.Trees = make([]*Tree, 0, b.Rounds)
	for round := 0; round < b.Rounds; round++ {
		for i := range resid {
			resid[i] = y[i] - current[i]
		}
		tree := &Tree{MaxDepth: b.MaxDepth, MinLeaf: b.MinLeaf}
		tree.grow(X, resid, idx, len(X[0]), rng, nil)
		b.Trees = append(b.Trees, tree)
		for i, row := range X {
			current[i] += b.LearnRate * tree.predictRow(row)
		}
	}
	return nil
}

// Predict sums the shrunken tree contributions over the base value.
func (b *Boost) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		v := b.Base
		for _, t := range b.Trees {
			v += b.LearnRate * t.predictRow(row)
		}
		out[i] = v
	}
	return out
}

// Save serializes the fitted booster.
func (b *Boost) Save(path string) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer w.Close()
	if err := gob.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("encode boost: %w", err)
	}
	return nil
}

// LoadBoost restores a persisted booster.
func LoadBoost(path string) (*Boost, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer r.Close()
	var b Boost
	if err := gob.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode boost: %w", err)
	}
	return &b, nil
}
