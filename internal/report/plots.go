package report

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// HistogramPlot renders the distribution of an index column.
func HistogramPlot(path, title string, values []float64) error {
	var clean plotter.Values
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return fmt.Errorf("histogram %s: no defined values", title)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Índice"
	p.Y.Label.Text = "Docentes"
	h, err := plotter.NewHist(clean, 16)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	p.Add(h)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// ScatterPlot renders predicted versus observed values for the winning
// candidate, with the identity line for reference.
func ScatterPlot(path, title string, actual, predicted []float64) error {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return fmt.Errorf("scatter %s: mismatched series", title)
	}
	pts := make(plotter.XYs, len(actual))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range actual {
		pts[i].X = actual[i]
		pts[i].Y = predicted[i]
		if actual[i] < lo {
			lo = actual[i]
		}
		if actual[i] > hi {
			hi = actual[i]
		}
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Observado"
	p.Y.Label.Text = "Previsto"
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	p.Add(s)
	ident := plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}}
	if line, err := plotter.NewLine(ident); err == nil {
		p.Add(line)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// ScatterClusters renders the two principal-component scores colored by
// cluster assignment, one scatter series per cluster.
func ScatterClusters(path, title string, pc1, pc2 []float64, clusters []int) error {
	if len(pc1) == 0 || len(pc1) != len(pc2) || len(pc1) != len(clusters) {
		return fmt.Errorf("cluster scatter %s: mismatched series", title)
	}
	byCluster := make(map[int]plotter.XYs)
	for i := range pc1 {
		byCluster[clusters[i]] = append(byCluster[clusters[i]], plotter.XY{X: pc1[i], Y: pc2[i]})
	}
	ids := make([]int, 0, len(byCluster))
	for id := range byCluster {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Componente 1"
	p.Y.Label.Text = "Componente 2"
	for _, id := range ids {
		s, err := plotter.NewScatter(byCluster[id])
		if err != nil {
			return fmt.Errorf("cluster scatter: %w", err)
		}
		s.Color = plotutil.Color(id)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("perfil %d", id), s)
	}
	p.Legend.Top = true
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// ImportanceBars renders the top feature importances of a tree ensemble.
func ImportanceBars(path, title string, imp map[string]float64, top int) error {
	type kv struct {
		name  string
		score float64
	}
	items := make([]kv, 0, len(imp))
	for k, v := range imp {
		items = append(items, kv{k, v})
	}
	if len(items) == 0 {
		return fmt.Errorf("importances %s: empty", title)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].score == items[j].score {
			return items[i].name < items[j].name
		}
		return items[i].score > items[j].score
	})
	if top > 0 && len(items) > top {
		items = items[:top]
	}
	vals := make(plotter.Values, len(items))
	names := make([]string, len(items))
	for i, it := range items {
		vals[i] = it.score
		names[i] = it.name
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Importância"
	bars, err := plotter.NewBarChart(vals, vg.Points(18))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = -1
	if err := p.Save(7*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
