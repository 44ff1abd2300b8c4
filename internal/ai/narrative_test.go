package ai

import (
	"errors"
	"strings"
	"testing"

	"github.com/teacherwell/teacherwell/internal/config"
	"github.com/teacherwell/teacherwell/internal/model"
)

func TestBuildPromptCarriesRunContext(t *testing.T) {
	sc := config.Scenario{Country: "Chile", Subject: "Matemática", Audience: "Docentes", Theme: "Bem-estar docente"}
	rec := model.SelectionRecord{
		RunID:       "r-1",
		BestModel:   "random_forest",
		Criterion:   model.Criterion,
		Target:      "indice_bem_estar_norm",
		Features:    []string{"indice_autoeficacia", "indice_satisfacao"},
		TargetStats: &model.TargetStats{Mean: 0.52, Std: 0.18, Min: 0, Max: 1, NObs: 1963},
	}
	ok := model.NewMetrics()
	ok.CVR2 = 0.61
	ok.CVRMSE = 0.12
	cands := []model.Candidate{
		{Name: "random_forest", Metrics: ok},
		{Name: "ols", Metrics: model.NewMetrics(), Err: errors.New("singular")},
	}

	prompt := BuildPrompt(sc, rec, cands)
	for _, want := range []string{
		"Chile", "Matemática", "indice_bem_estar_norm", "random_forest",
		"indice_autoeficacia", "0.520", "falhou",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	// Undefined metrics never render as NaN.
	if strings.Contains(prompt, "NaN") {
		t.Error("prompt leaks NaN")
	}
}
