package survey

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/teacherwell/teacherwell/internal/config"
)

// ErrTargetUnresolved is returned when the target group matches no columns;
// no downstream modeling is possible without a target index.
var ErrTargetUnresolved = errors.New("target group resolved to zero columns")

// Table is the minimal read surface the builder needs from a dataset.
type Table interface {
	Columns() []string
	Column(name string) []string
	NumRow() int
}

// Builder derives composite indices from raw survey columns according to
// the configured group table.
type Builder struct {
	voc    *Vocabulary
	groups []config.Group
	log    *slog.Logger
}

// Result holds the engineered columns and their provenance.
type Result struct {
	// Indices maps index name to its derived column, in group-table order
	// via Order. NaN marks rows where the index is undefined.
	Indices map[string][]float64
	Order   []string
	// Target is the target index name; TargetNorm the min-max normalized
	// variant; Bands the interpretive low/medium/high labels over it.
	Target     string
	TargetNorm string
	Bands      []string
	// Contributions maps index name to the raw columns that fed it,
	// persisted for auditability by reporting.
	Contributions map[string][]string
	// Skipped lists predictor groups that resolved to zero columns.
	Skipped []string
}

// NewBuilder wires the shared vocabulary and group table.
func NewBuilder(voc *Vocabulary, groups []config.Group, log *slog.Logger) *Builder {
	return &Builder{voc: voc, groups: groups, log: log}
}

// Build resolves every group against the table's columns and aggregates the
// normalized values into one derived column per group. A target group with
// zero resolved columns is fatal; empty predictor groups are logged and
// omitted.
func (b *Builder) Build(t Table) (*Result, error) {
	cols := t.Columns()
	n := t.NumRow()
	res := &Result{
		Indices:       make(map[string][]float64, len(b.groups)),
		Contributions: make(map[string][]string, len(b.groups)),
	}

	for _, g := range b.groups {
		resolved := ResolveGroup(cols, g.Prefixes)
		if len(resolved) == 0 {
			if g.Target {
				return nil, fmt.Errorf("group %q: %w", g.Name, ErrTargetUnresolved)
			}
			b.log.Warn("index group matched no columns, omitting", "grupo", g.Name)
			res.Skipped = append(res.Skipped, g.Name)
			continue
		}

		sub := make([][]float64, len(resolved))
		for i, col := range resolved {
			sub[i] = b.normalizeColumn(t.Column(col), n)
			if matchesAny(col, g.NegativePrefixes) {
				invertInPlace(sub[i], g.ScaleMax)
			}
		}

		idx := aggregate(sub, n, g.Aggregation)
		if g.Invert {
			invertInPlace(idx, g.ScaleMax)
		}

		res.Indices[g.Name] = idx
		res.Order = append(res.Order, g.Name)
		res.Contributions[g.Name] = resolved

		if g.Target {
			res.Target = g.Name
			res.TargetNorm = g.Name + "_norm"
			norm := minMaxNormalize(idx)
			res.Indices[res.TargetNorm] = norm
			res.Order = append(res.Order, res.TargetNorm)
			res.Contributions[res.TargetNorm] = resolved
			res.Bands = bands(norm)
			b.log.Info("target index built",
				"grupo", g.Name, "colunas", len(resolved), "validos", countValid(idx))
		}
	}
	return res, nil
}

func (b *Builder) normalizeColumn(raw []string, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i < len(raw) {
			v, ok := b.voc.Normalize(raw[i])
			if !ok {
				out[i] = math.NaN()
				continue
			}
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// aggregate collapses the normalized sub-matrix row-wise, skipping missing
// values. Means of all-missing rows stay NaN; sums of all-missing rows are
// zero, matching the cumulative-count reading of sum indices.
func aggregate(sub [][]float64, n int, how string) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		var cnt int
		for _, col := range sub {
			if math.IsNaN(col[i]) {
				continue
			}
			sum += col[i]
			cnt++
		}
		switch {
		case how == "sum":
			out[i] = sum
		case cnt == 0:
			out[i] = math.NaN()
		default:
			out[i] = sum / float64(cnt)
		}
	}
	return out
}

// invertInPlace flips values against the group's scale: v -> (max+1) - v.
func invertInPlace(vals []float64, scaleMax int) {
	top := float64(scaleMax + 1)
	for i, v := range vals {
		if !math.IsNaN(v) {
			vals[i] = top - v
		}
	}
}

// minMaxNormalize rescales to [0,1]. When the column has no spread (or no
// defined values) the raw values pass through unchanged.
func minMaxNormalize(vals []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(vals))
	copy(out, vals)
	if math.IsInf(lo, 1) || hi == lo {
		return out
	}
	span := hi - lo
	for i, v := range out {
		if !math.IsNaN(v) {
			out[i] = (v - lo) / span
		}
	}
	return out
}

// bands cuts the normalized index into interpretive ranges.
func bands(norm []float64) []string {
	out := make([]string, len(norm))
	for i, v := range norm {
		switch {
		case math.IsNaN(v):
			out[i] = ""
		case v <= 0.33:
			out[i] = "Baixo"
		case v <= 0.66:
			out[i] = "Médio"
		default:
			out[i] = "Alto"
		}
	}
	return out
}

func matchesAny(col string, prefixes []string) bool {
	lc := strings.ToLower(col)
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(lc, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func countValid(vals []float64) int {
	n := 0
	for _, v := range vals {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}
