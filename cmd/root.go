package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	cfgpkg "github.com/teacherwell/teacherwell/internal/config"
)

var (
	// Global flags (wired to config/viper in loadConfig)
	cfgFile string
	debug   bool
	// Flag overrides applied on top of the loaded config
	flagDataDir    string
	flagResultsDir string
	flagSeed       int64

	// Loaded configuration
	cfg *cfgpkg.Config
)

var rootCmd = &cobra.Command{
	Use:   "teacherwell",
	Short: "teacherwell: índices e modelagem de bem-estar docente (PISA 2018)",
	Long: `teacherwell lê as respostas do questionário de professores do PISA 2018,
deriva índices de bem-estar, formação, autoeficácia e apoio, ajusta um banco
de modelos de regressão e seleciona o melhor por validação cruzada,
gravando tabelas, figuras e recomendações.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.teacherwell/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding the questionnaire export (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagResultsDir, "results-dir", "", "directory to write tables/figures/texts/models (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "random seed for resampling and ensembles (overrides config)")
}

func loadConfig() {
	// Secrets such as the narrator API key may live in a local .env.
	_ = godotenv.Load()

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if f.Changed("results-dir") && flagResultsDir != "" {
		cfg.ResultsDir = flagResultsDir
	}
	if f.Changed("seed") {
		cfg.Seed = flagSeed
	}
}

// requireConfig guards commands that cannot run without a loaded config.
func requireConfig() (*cfgpkg.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded; check --config or ~/.teacherwell/config.yaml")
	}
	return cfg, nil
}
