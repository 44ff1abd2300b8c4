package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teacherwell/teacherwell/internal/dataset"
	"github.com/teacherwell/teacherwell/internal/logx"
	"github.com/teacherwell/teacherwell/internal/model"
	"github.com/teacherwell/teacherwell/internal/report"
	"github.com/teacherwell/teacherwell/internal/survey"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Fit or inspect the candidate models",
	Example: `  teacherwell models compare
  teacherwell models show
  teacherwell models show --results-dir ./resultados`,
}

var modelsCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Fit the candidate bank against the dataset and print the comparison",
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

		path, err := dataset.Discover(c.DataDir)
		if err != nil {
			return err
		}
		ds, err := dataset.Load(path)
		if err != nil {
			return err
		}
		ds.Clean()

		voc := survey.NewVocabulary(c.AgreementScaleMax)
		idx, err := survey.NewBuilder(voc, c.Groups, log).Build(ds)
		if err != nil {
			return err
		}

		var features []string
		for _, name := range idx.Order {
			if name != idx.Target && name != idx.TargetNorm {
				features = append(features, name)
			}
		}
		m, err := model.Assemble(idx.TargetNorm, idx.Indices[idx.TargetNorm], features, idx.Indices)
		if err != nil {
			return err
		}

		bank := &model.Bank{
			Seed:        c.Seed,
			Folds:       c.CVFolds,
			ForestTrees: c.ForestTrees,
			BoostRounds: c.BoostRounds,
			Interaction: c.InteractionTerms,
			Log:         log,
		}
		cands := bank.Run(m, os.TempDir(), "comparacao")

		winnerName := ""
		if winner, err := model.Select(cands); err == nil {
			winnerName = winner.Name
		}
		report.ConsoleComparison(os.Stdout, cands, winnerName)
		return nil
	},
}

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the selection record and, for tree ensembles, the artifact summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		metaPath := filepath.Join(c.ResultsDir, "tabelas", "metadados_modelo.json")
		rec, err := report.ReadMetadata(metaPath)
		if err != nil {
			return fmt.Errorf("no finished run found at %s: %w", metaPath, err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return err
		}
		if rec.ArtifactPath == "" {
			return nil
		}
		switch rec.BestModel {
		case model.NameRandomForest:
			f, err := model.LoadForest(rec.ArtifactPath)
			if err != nil {
				return err
			}
			fmt.Printf("\nFloresta com %d árvores (seed %d)\n", len(f.Trees), f.Seed)
		case model.NameGradientBoost:
			b, err := model.LoadBoost(rec.ArtifactPath)
			if err != nil {
				return err
			}
			fmt.Printf("\nBoosting com %d rodadas (taxa %.3f, seed %d)\n",
				len(b.Trees), b.LearnRate, b.Seed)
		}
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsCompareCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	rootCmd.AddCommand(modelsCmd)
}
