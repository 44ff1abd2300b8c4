package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/teacherwell/teacherwell/internal/ai"
	"github.com/teacherwell/teacherwell/internal/logx"
	"github.com/teacherwell/teacherwell/internal/pipeline"
	"github.com/teacherwell/teacherwell/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the full pipeline: load, indices, models, selection, reports",
	Example: `  teacherwell run
  teacherwell run --data-dir ./dados --results-dir ./resultados
  teacherwell run --seed 7 --debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		log, closeLog, err := logx.Setup(c.LogsDir, debug)
		if err != nil {
			return fmt.Errorf("set up logging: %w", err)
		}
		defer closeLog()

		out, err := pipeline.Run(c, log)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Execução %s concluída (%d linhas)\n", out.RunID, out.NRows)
		fmt.Printf("  Melhor modelo: %s\n", out.Record.BestModel)
		fmt.Printf("  Tabelas:  %s\n", out.TablesDir)
		fmt.Printf("  Figuras:  %s\n", out.FiguresDir)
		fmt.Printf("  Textos:   %s\n", out.TextsDir)
		if out.Record.ArtifactPath != "" {
			fmt.Printf("  Modelo:   %s\n", out.Record.ArtifactPath)
		}
		fmt.Println()
		report.ConsoleComparison(os.Stdout, out.Candidates, out.Record.BestModel)

		// Optional narrative stage: config-gated, never blocks the run
		// artifacts already written.
		if c.Narrator.Enabled {
			if c.Narrator.APIKey == "" {
				fmt.Fprintln(os.Stderr, "⚠ Warning: narrator enabled but no API key configured, skipping narrative")
				return nil
			}
			client := ai.NewClient(c.Narrator.APIKey, c.Narrator.BaseURL,
				time.Duration(c.Narrator.TimeoutSec)*time.Second, c.Narrator.RetryMax)
			prompt := ai.BuildPrompt(c.Scenario, out.Record, out.Candidates)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			text, err := ai.Narrate(ctx, client, c.Narrator.Model, prompt)
			if err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: narrative generation failed: %v\n", err)
				return nil
			}
			path := filepath.Join(out.TextsDir, "narrativa.md")
			if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: could not write narrative: %v\n", err)
				return nil
			}
			fmt.Printf("  Narrativa: %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
