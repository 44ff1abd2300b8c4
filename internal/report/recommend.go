package report

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/teacherwell/teacherwell/internal/config"
	"github.com/teacherwell/teacherwell/internal/model"
)

// Recommendations combines the winner's variable ranking with the OLS
// coefficient directions into policy-facing statements: importance says
// which variables matter, the sign of the matching OLS coefficient says
// which way they push the index.
func Recommendations(sc config.Scenario, winner *model.Candidate, ols *model.OLSResult, stats *model.TargetStats) []string {
	var recs []string

	for _, name := range rankedVariables(winner, ols, 5) {
		coef, ok := coefficientFor(ols, name)
		if !ok {
			continue
		}
		direction, action := "positivamente", "fortalecer e investir em"
		if coef < 0 {
			direction, action = "negativamente", "mitigar e revisar"
		}
		recs = append(recs, fmt.Sprintf(
			"A variável '%s' foi identificada como fator chave: os dados indicam que ela impacta %s o(a) %s. Recomenda-se %s políticas relacionadas a este aspecto.",
			name, direction, strings.ToLower(sc.Theme), action))
	}

	if stats != nil {
		switch {
		case stats.Mean < 0.3:
			recs = append(recs, "Os níveis médios do índice estão baixos; sugere-se implementar programas de apoio psicossocial e melhoria das condições de trabalho.")
		case stats.Mean < 0.6:
			recs = append(recs, "Os níveis médios do índice estão intermediários; recomenda-se ampliar ações de reconhecimento e desenvolvimento profissional.")
		}
	}

	recs = append(recs,
		fmt.Sprintf("Investir na formação inicial e continuada de professores de %s no %s, com foco em competências pedagógicas e socioemocionais.",
			strings.ToLower(sc.Subject), sc.Country),
		"Criar indicadores nacionais de bem-estar e autoeficácia docente e integrá-los aos processos de avaliação educacional.",
	)
	return recs
}

// rankedVariables prefers the winner's importances (tree ensembles) and
// falls back to OLS significance (p <= 0.05) otherwise.
func rankedVariables(winner *model.Candidate, ols *model.OLSResult, top int) []string {
	if winner != nil && len(winner.Importances) > 0 {
		type kv struct {
			name  string
			score float64
		}
		items := make([]kv, 0, len(winner.Importances))
		for k, v := range winner.Importances {
			items = append(items, kv{k, v})
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].score == items[j].score {
				return items[i].name < items[j].name
			}
			return items[i].score > items[j].score
		})
		if len(items) > top {
			items = items[:top]
		}
		names := make([]string, len(items))
		for i, it := range items {
			names[i] = it.name
		}
		return names
	}
	if ols == nil {
		return nil
	}
	var names []string
	for _, c := range ols.Significant(0.05) {
		names = append(names, c.Original)
		if len(names) == top {
			break
		}
	}
	return names
}

func coefficientFor(ols *model.OLSResult, name string) (float64, bool) {
	if ols == nil {
		return math.NaN(), false
	}
	for _, c := range ols.Coefficients {
		if c.Original == name || c.Name == name {
			return c.Estimate, true
		}
	}
	return math.NaN(), false
}

// WriteRecommendations persists the numbered recommendations text.
func WriteRecommendations(path string, sc config.Scenario, recs []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Recomendações de Políticas Públicas (%s - %s) ===\n\n", sc.Theme, sc.Country)
	if len(recs) == 0 {
		b.WriteString("Nenhuma recomendação específica pôde ser gerada com base nos resultados estatísticos.\n")
	}
	for i, r := range recs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write recommendations: %w", err)
	}
	return nil
}
