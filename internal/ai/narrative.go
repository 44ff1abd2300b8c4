package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/teacherwell/teacherwell/internal/config"
	"github.com/teacherwell/teacherwell/internal/model"
)

const systemPrompt = `Você é um analista educacional. Escreva em português, de forma ` +
	`clara e objetiva, um resumo analítico sobre os resultados de uma modelagem de ` +
	`bem-estar docente. Não invente números que não estejam no contexto.`

// BuildPrompt assembles the user message describing the run for the narrator.
func BuildPrompt(sc config.Scenario, rec model.SelectionRecord, cands []model.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cenário: país %s, disciplina %s, público %s, tema %s.\n\n",
		sc.Country, sc.Subject, sc.Audience, sc.Theme)
	fmt.Fprintf(&b, "Variável alvo: %s\n", rec.Target)
	fmt.Fprintf(&b, "Melhor modelo: %s (critério: %s)\n", rec.BestModel, rec.Criterion)
	fmt.Fprintf(&b, "Variáveis explicativas: %s\n\n", strings.Join(rec.Features, ", "))

	if rec.TargetStats != nil {
		fmt.Fprintf(&b, "Estatísticas do alvo: média %.3f, desvio %.3f, mínimo %.3f, máximo %.3f, n=%d\n\n",
			rec.TargetStats.Mean, rec.TargetStats.Std, rec.TargetStats.Min,
			rec.TargetStats.Max, rec.TargetStats.NObs)
	}

	b.WriteString("Desempenho dos modelos candidatos:\n")
	names := make([]string, 0, len(cands))
	byName := make(map[string]model.Candidate, len(cands))
	for _, c := range cands {
		names = append(names, c.Name)
		byName[c.Name] = c
	}
	sort.Strings(names)
	for _, n := range names {
		c := byName[n]
		if !c.OK() {
			fmt.Fprintf(&b, "- %s: falhou (%v)\n", c.Name, c.Err)
			continue
		}
		fmt.Fprintf(&b, "- %s: CV R²=%s, CV RMSE=%s, R²=%s\n",
			c.Name, fmtVal(c.Metrics.CVR2), fmtVal(c.Metrics.CVRMSE), fmtVal(c.Metrics.R2))
	}
	b.WriteString("\nEscreva 3 a 5 parágrafos interpretando os resultados e o que eles ")
	b.WriteString("sugerem sobre os fatores associados ao bem-estar docente.")
	return b.String()
}

func fmtVal(v float64) string {
	if !model.Defined(v) {
		return "indisponível"
	}
	return fmt.Sprintf("%.4f", v)
}

// Narrate asks the configured model for a textual summary of a finished run.
func Narrate(ctx context.Context, c *Client, modelName, prompt string) (string, error) {
	resp, err := c.Generate(ctx, GenerateRequest{
		Model: modelName,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   1200,
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
