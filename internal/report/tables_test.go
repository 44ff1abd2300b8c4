package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/teacherwell/teacherwell/internal/config"
	"github.com/teacherwell/teacherwell/internal/model"
)

func TestMetadataFieldNamesAreStable(t *testing.T) {
	rec := model.SelectionRecord{
		RunID:        "r-1",
		BestModel:    "random_forest",
		Criterion:    model.Criterion,
		Target:       "indice_bem_estar_norm",
		Features:     []string{"indice_autoeficacia", "indice_satisfacao"},
		ArtifactPath: "modelos/random_forest_r-1.gob",
		TargetStats:  &model.TargetStats{Mean: 0.5, Std: 0.2, Min: 0, Max: 1, NObs: 100},
	}
	path := filepath.Join(t.TempDir(), "metadados.json")
	if err := WriteMetadata(path, rec); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"run_id", "melhor_modelo", "criterio", "variavel_alvo", "features", "caminho_modelo", "estatisticas_alvo"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("metadata missing stable key %q", key)
		}
	}

	got, err := ReadMetadata(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.BestModel != rec.BestModel || got.Target != rec.Target || len(got.Features) != 2 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestMetadataOmitsArtifactForLinearWinners(t *testing.T) {
	rec := model.SelectionRecord{RunID: "r", BestModel: "ols", Target: "alvo"}
	path := filepath.Join(t.TempDir(), "m.json")
	if err := WriteMetadata(path, rec); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "caminho_modelo") {
		t.Fatal("empty artifact path serialized")
	}
}

func TestWriteCandidatesBlankCellsForUndefinedMetrics(t *testing.T) {
	m := model.NewMetrics()
	m.CVR2 = 0.5
	cands := []model.Candidate{
		{Name: "regressao_robusta", Metrics: m},
	}
	path := filepath.Join(t.TempDir(), "comp.csv")
	if err := WriteCandidates(path, cands); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	header, row := rows[0], rows[1]
	byName := map[string]string{}
	for i, h := range header {
		byName[h] = row[i]
	}
	if byName["cv_r2"] != "0.500000" {
		t.Errorf("cv_r2 = %q", byName["cv_r2"])
	}
	// AIC undefined for CV-only candidates: blank, never "NaN".
	if byName["aic"] != "" {
		t.Errorf("aic = %q; want empty", byName["aic"])
	}
}

func TestWriteContributionsPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contrib.csv")
	order := []string{"b_indice", "a_indice"}
	contrib := map[string][]string{
		"a_indice": {"TC199Q01"},
		"b_indice": {"TC014Q01", "TC015Q01"},
	}
	if err := WriteContributions(path, order, contrib); err != nil {
		t.Fatal(err)
	}
	f, _ := os.Open(path)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[1][0] != "b_indice" || rows[3][0] != "a_indice" {
		t.Fatalf("order not preserved: %v", rows)
	}
}

func TestConsoleComparisonMarksWinnerAndFailures(t *testing.T) {
	ok := model.NewMetrics()
	ok.CVR2 = 0.7
	cands := []model.Candidate{
		{Name: "random_forest", Metrics: ok},
		{Name: "ols", Metrics: model.NewMetrics(), Err: os.ErrInvalid},
	}
	var buf bytes.Buffer
	ConsoleComparison(&buf, cands, "random_forest")
	out := buf.String()
	if !strings.Contains(out, "vencedor") {
		t.Error("winner not marked")
	}
	if !strings.Contains(out, "falhou") {
		t.Error("failure not marked")
	}
}

func TestRecommendationsDirectionFollowsCoefficientSign(t *testing.T) {
	sc := config.Scenario{Country: "Chile", Subject: "Matemática", Theme: "Bem-estar docente"}
	ols := &model.OLSResult{Coefficients: []model.Coefficient{
		{Name: "const", Original: "const", Estimate: 1, PValue: 0.001},
		{Name: "indice_autoeficacia", Original: "indice_autoeficacia", Estimate: 0.8, PValue: 0.001},
		{Name: "indice_apoio", Original: "indice_apoio", Estimate: -0.4, PValue: 0.002},
	}}
	recs := Recommendations(sc, nil, ols, &model.TargetStats{Mean: 0.8})

	joined := strings.Join(recs, "\n")
	if !strings.Contains(joined, "indice_autoeficacia") || !strings.Contains(joined, "positivamente") {
		t.Error("positive driver missing")
	}
	if !strings.Contains(joined, "indice_apoio") || !strings.Contains(joined, "negativamente") {
		t.Error("negative driver missing")
	}
	// Mean 0.8: no low/mid band recommendation.
	if strings.Contains(joined, "níveis médios") {
		t.Error("band recommendation emitted for high mean")
	}
}

func TestRecommendationsPrefersWinnerImportances(t *testing.T) {
	sc := config.Scenario{Theme: "Bem-estar docente", Subject: "Matemática", Country: "Chile"}
	winner := &model.Candidate{
		Name: "random_forest",
		Importances: map[string]float64{
			"indice_satisfacao":   0.9,
			"indice_irrelevante":  0.05,
			"indice_autoeficacia": 0.05,
		},
	}
	ols := &model.OLSResult{Coefficients: []model.Coefficient{
		{Name: "indice_satisfacao", Original: "indice_satisfacao", Estimate: 0.5, PValue: 0.01},
	}}
	recs := Recommendations(sc, winner, ols, nil)
	if !strings.Contains(strings.Join(recs, "\n"), "indice_satisfacao") {
		t.Error("top importance variable missing from recommendations")
	}
}

func TestWriteRecommendationsEmptyFallbackText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recs.md")
	sc := config.Scenario{Country: "Chile", Theme: "Bem-estar docente"}
	if err := WriteRecommendations(path, sc, nil); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "Nenhuma recomendação") {
		t.Fatalf("fallback text missing: %s", b)
	}
}

func TestFmtMetric(t *testing.T) {
	if got := fmtMetric(math.NaN()); got != "" {
		t.Errorf("fmtMetric(NaN) = %q", got)
	}
	if got := fmtMetric(1.5); got != "1.500000" {
		t.Errorf("fmtMetric(1.5) = %q", got)
	}
}
