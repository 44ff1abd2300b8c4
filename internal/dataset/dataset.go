// Package dataset locates, loads and cleans the survey response tables.
// CSV and XLSX are supported; the in-memory representation is a gota
// DataFrame of string cells — numeric coercion is the survey vocabulary's
// job, not the loader's.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// ErrDataNotFound is returned when no candidate responses file exists in
// the data directory.
var ErrDataNotFound = errors.New("no responses data file found")

// Dataset wraps the loaded table and remembers basic provenance.
type Dataset struct {
	df   dataframe.DataFrame
	Path string
}

// CleanReport summarizes what cleaning removed.
type CleanReport struct {
	DroppedEmptyColumns []string
	DuplicateRows       int
}

// Discover finds the responses file inside dir. It prefers names that look
// like response data exports ("resposta"/"response" plus "data") while
// skipping label and field-dictionary files, then falls back to any
// responses-like file, then to the only tabular file present.
func Discover(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read data dir: %w", err)
	}
	var tabular []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		switch filepath.Ext(name) {
		case ".csv", ".tsv", ".xlsx":
		default:
			continue
		}
		tabular = append(tabular, e.Name())
		if strings.Contains(name, "lbl") || strings.Contains(name, "fields") {
			continue
		}
		if (strings.Contains(name, "resposta") || strings.Contains(name, "response")) &&
			strings.Contains(name, "data") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	for _, name := range tabular {
		ln := strings.ToLower(name)
		if strings.Contains(ln, "resposta") || strings.Contains(ln, "response") {
			return filepath.Join(dir, name), nil
		}
	}
	if len(tabular) == 1 {
		return filepath.Join(dir, tabular[0]), nil
	}
	return "", fmt.Errorf("%w in %s", ErrDataNotFound, dir)
}

// Load reads a CSV/TSV/XLSX file into a Dataset. Column names are trimmed
// and duplicated names are dropped after their first occurrence, so every
// surviving column is uniquely addressable.
func Load(path string) (*Dataset, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(path)
	default:
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset %s: empty after read", filepath.Base(path))
	}
	records = dedupeColumns(records)
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.HasHeader(true),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("load records: %w", df.Err)
	}
	return &Dataset{df: df, Path: path}, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	delim, err := sniffDelimiter(br, path)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		row := make([]string, len(rec))
		copy(row, rec)
		records = append(records, row)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %s: no rows", filepath.Base(path))
	}
	// Pad ragged rows to header width.
	width := len(records[0])
	for i, row := range records {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			records[i] = padded
		} else if len(row) > width {
			records[i] = row[:width]
		}
	}
	return records, nil
}

// sniffDelimiter inspects the first line for ';' and '\t' before defaulting
// to ','. TSV files are always tab-delimited.
func sniffDelimiter(br *bufio.Reader, path string) (rune, error) {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t', nil
	}
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, fmt.Errorf("peek header: %w", err)
	}
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	switch {
	case strings.Count(line, ";") > strings.Count(line, ","):
		return ';', nil
	case strings.Count(line, "\t") > strings.Count(line, ","):
		return '\t', nil
	default:
		return ',', nil
	}
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx %s: no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx %s: empty sheet", filepath.Base(path))
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows, nil
}

// dedupeColumns trims header names and keeps only the first occurrence of
// each name, removing the duplicate columns from every row.
func dedupeColumns(records [][]string) [][]string {
	header := records[0]
	keep := make([]int, 0, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("coluna_%d", i+1)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		header[i] = name
		keep = append(keep, i)
	}
	if len(keep) == len(header) {
		return records
	}
	out := make([][]string, len(records))
	for r, row := range records {
		slim := make([]string, 0, len(keep))
		for _, i := range keep {
			if i < len(row) {
				slim = append(slim, row[i])
			} else {
				slim = append(slim, "")
			}
		}
		out[r] = slim
	}
	return out
}

// Clean drops columns with no values at all and removes exact duplicate
// rows. It returns what was removed so the caller can log it.
func (d *Dataset) Clean() CleanReport {
	var rep CleanReport

	names := d.df.Names()
	kept := make([]string, 0, len(names))
	for _, name := range names {
		empty := true
		for _, v := range d.df.Col(name).Records() {
			if strings.TrimSpace(v) != "" {
				empty = false
				break
			}
		}
		if empty {
			rep.DroppedEmptyColumns = append(rep.DroppedEmptyColumns, name)
			continue
		}
		kept = append(kept, name)
	}
	if len(rep.DroppedEmptyColumns) > 0 && len(kept) > 0 {
		d.df = d.df.Select(kept)
	}

	recs := d.df.Records()
	if len(recs) > 1 {
		seen := make(map[string]struct{}, len(recs)-1)
		keepIdx := make([]int, 0, len(recs)-1)
		for i, row := range recs[1:] {
			key := strings.Join(row, "\x1f")
			if _, dup := seen[key]; dup {
				rep.DuplicateRows++
				continue
			}
			seen[key] = struct{}{}
			keepIdx = append(keepIdx, i)
		}
		if rep.DuplicateRows > 0 {
			d.df = d.df.Subset(keepIdx)
		}
	}
	return rep
}

// Columns returns the column names in load order.
func (d *Dataset) Columns() []string { return d.df.Names() }

// Column returns the raw string cells of one column.
func (d *Dataset) Column(name string) []string { return d.df.Col(name).Records() }

// NumRow reports the row count.
func (d *Dataset) NumRow() int { return d.df.Nrow() }

// AddFloatColumn appends (or replaces) a derived numeric column.
func (d *Dataset) AddFloatColumn(name string, vals []float64) error {
	d.df = d.df.Mutate(series.New(vals, series.Float, name))
	if d.df.Err != nil {
		return fmt.Errorf("mutate %s: %w", name, d.df.Err)
	}
	return nil
}

// AddStringColumn appends (or replaces) a derived label column.
func (d *Dataset) AddStringColumn(name string, vals []string) error {
	d.df = d.df.Mutate(series.New(vals, series.String, name))
	if d.df.Err != nil {
		return fmt.Errorf("mutate %s: %w", name, d.df.Err)
	}
	return nil
}

// WriteCSV persists the current frame, raw and derived columns included.
func (d *Dataset) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := d.df.WriteCSV(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
