// Package report writes the pipeline's artifacts: CSV tables, the JSON
// metadata record, plots, recommendation texts and console summaries.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/teacherwell/teacherwell/internal/model"
)

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func fmtMetric(v float64) string {
	if !model.Defined(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteCandidates writes the full model-comparison table, one row per
// candidate, blank cells for undefined metrics and the error text for
// excluded candidates.
func WriteCandidates(path string, cands []model.Candidate) error {
	header := []string{"modelo", "cv_r2", "cv_rmse", "cv_mae", "r2", "r2_ajustado", "aic", "bic", "erro"}
	rows := make([][]string, 0, len(cands))
	for _, c := range cands {
		errText := ""
		if c.Err != nil {
			errText = c.Err.Error()
		}
		m := c.Metrics
		rows = append(rows, []string{
			c.Name,
			fmtMetric(m.CVR2), fmtMetric(m.CVRMSE), fmtMetric(m.CVMAE),
			fmtMetric(m.R2), fmtMetric(m.AdjR2), fmtMetric(m.AIC), fmtMetric(m.BIC),
			errText,
		})
	}
	return writeCSV(path, header, rows)
}

// WriteOLSCoefficients writes the coefficient table with both the
// sanitized reporting name and the original column label, so downstream
// stages can join on either.
func WriteOLSCoefficients(path string, res *model.OLSResult) error {
	header := []string{"variavel", "original", "coeficiente", "erro_padrao", "p_valor", "ic_inf", "ic_sup"}
	rows := make([][]string, 0, len(res.Coefficients))
	for _, c := range res.Coefficients {
		rows = append(rows, []string{
			c.Name, c.Original,
			strconv.FormatFloat(c.Estimate, 'f', 6, 64),
			strconv.FormatFloat(c.StdErr, 'f', 6, 64),
			strconv.FormatFloat(c.PValue, 'f', 6, 64),
			strconv.FormatFloat(c.CILow, 'f', 6, 64),
			strconv.FormatFloat(c.CIHigh, 'f', 6, 64),
		})
	}
	return writeCSV(path, header, rows)
}

// WriteSignificant writes the refinement table: coefficients whose p-value
// is at or below 0.05.
func WriteSignificant(path string, res *model.OLSResult) error {
	header := []string{"variavel", "original", "coeficiente", "p_valor"}
	var rows [][]string
	for _, c := range res.Significant(0.05) {
		rows = append(rows, []string{
			c.Name, c.Original,
			strconv.FormatFloat(c.Estimate, 'f', 6, 64),
			strconv.FormatFloat(c.PValue, 'f', 6, 64),
		})
	}
	return writeCSV(path, header, rows)
}

// WriteImportances writes per-feature importance scores of a tree
// ensemble, descending.
func WriteImportances(path string, imp map[string]float64) error {
	type kv struct {
		name  string
		score float64
	}
	items := make([]kv, 0, len(imp))
	for k, v := range imp {
		items = append(items, kv{k, v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].score == items[j].score {
			return items[i].name < items[j].name
		}
		return items[i].score > items[j].score
	})
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.name, strconv.FormatFloat(it.score, 'f', 6, 64)})
	}
	return writeCSV(path, []string{"variavel", "importancia"}, rows)
}

// WriteContributions writes the {index → contributing raw columns} map,
// one row per (index, column) pair, preserving resolution order.
func WriteContributions(path string, order []string, contributions map[string][]string) error {
	var rows [][]string
	for _, idx := range order {
		for _, col := range contributions[idx] {
			rows = append(rows, []string{idx, col})
		}
	}
	return writeCSV(path, []string{"indice", "coluna_origem"}, rows)
}

// WriteMetadata persists the selection record as the JSON hand-off
// artifact.
func WriteMetadata(path string, rec model.SelectionRecord) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads a previously written selection record.
func ReadMetadata(path string) (*model.SelectionRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var rec model.SelectionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &rec, nil
}

// ConsoleComparison renders the candidate comparison to the console,
// marking the winner.
func ConsoleComparison(w io.Writer, cands []model.Candidate, winner string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Modelo", "CV R2", "CV RMSE", "R2 aj.", "AIC", "Status"})
	for _, c := range cands {
		status := ""
		switch {
		case c.Err != nil:
			status = "falhou"
		case c.Name == winner:
			status = "vencedor"
		}
		table.Append([]string{
			c.Name,
			fmtMetric(c.Metrics.CVR2),
			fmtMetric(c.Metrics.CVRMSE),
			fmtMetric(c.Metrics.AdjR2),
			fmtMetric(c.Metrics.AIC),
			status,
		})
	}
	table.Render()
}
