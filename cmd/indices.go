package cmd

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/teacherwell/teacherwell/internal/dataset"
	"github.com/teacherwell/teacherwell/internal/logx"
	"github.com/teacherwell/teacherwell/internal/survey"
)

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "Derive the engineered indices and show which columns fed each one",
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

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Índice", "Colunas", "Válidos", "Média"})
		for _, name := range idx.Order {
			vals := idx.Indices[name]
			n, mean := summarize(vals)
			table.Append([]string{
				name,
				strings.Join(idx.Contributions[name], ", "),
				fmt.Sprintf("%d/%d", n, len(vals)),
				fmtMean(mean),
			})
		}
		table.Render()

		if len(idx.Skipped) > 0 {
			fmt.Printf("⚠ Grupos sem colunas no dataset: %s\n", strings.Join(idx.Skipped, ", "))
		}
		return nil
	},
}

func summarize(vals []float64) (int, float64) {
	n, sum := 0, 0.0
	for _, v := range vals {
		if !math.IsNaN(v) {
			n++
			sum += v
		}
	}
	if n == 0 {
		return 0, math.NaN()
	}
	return n, sum / float64(n)
}

func fmtMean(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func init() {
	rootCmd.AddCommand(indicesCmd)
}
