package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/teacherwell/teacherwell/internal/ai"
	"github.com/teacherwell/teacherwell/internal/report"
)

var narrateOut string

var narrateCmd = &cobra.Command{
	Use:   "narrate",
	Short: "Generate a textual summary of the latest run via an OpenAI-compatible API",
	Long: `narrate reads the metadata and model comparison of the latest run and asks
the configured language model for an analytical summary in Portuguese.
Requires narrator.api_key (or TEACHERWELL_NARRATOR_API_KEY) to be set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if c.Narrator.APIKey == "" {
			return fmt.Errorf("narrator API key not configured; set narrator.api_key or TEACHERWELL_NARRATOR_API_KEY")
		}

		metaPath := filepath.Join(c.ResultsDir, "tabelas", "metadados_modelo.json")
		rec, err := report.ReadMetadata(metaPath)
		if err != nil {
			return fmt.Errorf("no finished run found at %s: %w", metaPath, err)
		}

		client := ai.NewClient(c.Narrator.APIKey, c.Narrator.BaseURL,
			time.Duration(c.Narrator.TimeoutSec)*time.Second, c.Narrator.RetryMax)
		prompt := ai.BuildPrompt(c.Scenario, *rec, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		text, err := ai.Narrate(ctx, client, c.Narrator.Model, prompt)
		if err != nil {
			return err
		}

		if narrateOut == "" {
			narrateOut = filepath.Join(c.ResultsDir, "textos", "narrativa.md")
		}
		if err := os.MkdirAll(filepath.Dir(narrateOut), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(narrateOut, []byte(text+"\n"), 0o644); err != nil {
			return fmt.Errorf("write narrative: %w", err)
		}
		fmt.Printf("✓ Narrativa gravada em %s\n", narrateOut)
		return nil
	},
}

func init() {
	narrateCmd.Flags().StringVar(&narrateOut, "output", "", "output file (default resultados/textos/narrativa.md)")
	rootCmd.AddCommand(narrateCmd)
}
