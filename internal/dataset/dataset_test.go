package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscoverPrefersResponseDataFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "TC_Lbl_Data.csv", "a\n1\n")
	writeFile(t, dir, "TC_Respostas_Data.csv", "a\n1\n")
	writeFile(t, dir, "notas.txt", "x")

	got, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "TC_Respostas_Data.csv" {
		t.Fatalf("Discover = %s", got)
	}
}

func TestDiscoverFallsBackToOnlyTabularFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "export.csv", "a\n1\n")
	got, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "export.csv" {
		t.Fatalf("Discover = %s", got)
	}
}

func TestDiscoverNothingFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "x\n")
	writeFile(t, dir, "b.csv", "x\n")
	if _, err := Discover(dir); !errors.Is(err, ErrDataNotFound) {
		t.Fatalf("err = %v; want ErrDataNotFound", err)
	}
}

func TestLoadSniffsSemicolonDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "respostas_data.csv", "col_a;col_b\n1;Agree\n2;Disagree\n")
	ds, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"col_a", "col_b"}
	if !reflect.DeepEqual(ds.Columns(), want) {
		t.Fatalf("Columns = %v; want %v", ds.Columns(), want)
	}
	if got := ds.Column("col_b"); got[0] != "Agree" || got[1] != "Disagree" {
		t.Fatalf("col_b = %v", got)
	}
}

func TestLoadSniffsTabDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "respostas.tsv", "a\tb\n1\t2\n")
	ds, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if ds.NumRow() != 1 || len(ds.Columns()) != 2 {
		t.Fatalf("rows=%d cols=%d", ds.NumRow(), len(ds.Columns()))
	}
}

func TestLoadDropsDuplicateAndBlankHeaders(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "r.csv", "a, a ,,b\n1,2,3,4\n")
	ds, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cols := ds.Columns()
	// Second "a" dropped; blank header renamed.
	seen := map[string]int{}
	for _, c := range cols {
		seen[c]++
	}
	if seen["a"] != 1 {
		t.Fatalf("duplicate header survived: %v", cols)
	}
	for _, c := range cols {
		if c == "" {
			t.Fatalf("blank header survived: %v", cols)
		}
	}
	if got := ds.Column("b"); got[0] != "4" {
		t.Fatalf("column b misaligned after dedupe: %v", got)
	}
}

func TestLoadPadsRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "r.csv", "a,b,c\n1,2\n4,5,6\n")
	ds, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if ds.NumRow() != 2 {
		t.Fatalf("rows = %d", ds.NumRow())
	}
	if got := ds.Column("c"); got[0] != "" || got[1] != "6" {
		t.Fatalf("padded column = %v", got)
	}
}

func TestCleanRemovesEmptyColumnsAndDuplicateRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "r.csv",
		"a,vazia,b\n1,,x\n1,,x\n2,,y\n")
	ds, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	rep := ds.Clean()
	if len(rep.DroppedEmptyColumns) != 1 || rep.DroppedEmptyColumns[0] != "vazia" {
		t.Fatalf("DroppedEmptyColumns = %v", rep.DroppedEmptyColumns)
	}
	if rep.DuplicateRows != 1 {
		t.Fatalf("DuplicateRows = %d", rep.DuplicateRows)
	}
	if ds.NumRow() != 2 {
		t.Fatalf("rows after clean = %d", ds.NumRow())
	}
}

func TestAddAndExportDerivedColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "r.csv", "a\n1\n2\n")
	ds, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.AddFloatColumn("indice", []float64{0.5, 1.5}); err != nil {
		t.Fatal(err)
	}
	if err := ds.AddStringColumn("faixa", []string{"Baixo", "Alto"}); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.csv")
	if err := ds.WriteCSV(out); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 {
		t.Fatal("exported csv is empty")
	}
}
