package cmd

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/teacherwell/teacherwell/internal/runstore"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past pipeline runs recorded in the local registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		store, err := runstore.Open(c.RunDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(historyLimit)
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Execução", "Data", "País", "Melhor modelo", "Alvo", "Linhas"})
		for _, r := range runs {
			table.Append([]string{
				shortID(r.ID), r.CreatedAt, r.Country, r.BestModel, r.Target,
				strconv.Itoa(r.NRows),
			})
		}
		table.Render()
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(historyCmd)
}
