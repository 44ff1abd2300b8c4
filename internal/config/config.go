// Package config loads and persists the pipeline configuration: the analysis
// scenario, directory layout, model hyperparameters and the column-group
// table that drives index engineering.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Scenario labels the analysis context. It is consumed for labeling and
// logging only, never for control flow.
type Scenario struct {
	Country  string `mapstructure:"country" yaml:"country"`
	Subject  string `mapstructure:"subject" yaml:"subject"`
	Audience string `mapstructure:"audience" yaml:"audience"`
	Theme    string `mapstructure:"theme" yaml:"theme"`
}

// Group declares one engineered index: the survey item-code prefixes that
// feed it, how resolved columns are aggregated, and its scale semantics.
type Group struct {
	Name string `mapstructure:"name" yaml:"name"`
	// Prefixes are matched case-insensitively against dataset column names;
	// at most one column is kept per prefix (first match in column order).
	Prefixes    []string `mapstructure:"prefixes" yaml:"prefixes"`
	Aggregation string   `mapstructure:"aggregation" yaml:"aggregation"` // "mean" | "sum"
	// Invert flips the whole index: value = (scale_max + 1) - raw.
	Invert bool `mapstructure:"invert" yaml:"invert"`
	// NegativePrefixes mark items whose scale runs against the index
	// direction; those columns are flipped before aggregation.
	NegativePrefixes []string `mapstructure:"negative_prefixes" yaml:"negative_prefixes,omitempty"`
	// ScaleMax is the upper bound of the Likert scale feeding this group.
	// Inversion uses it instead of a hardcoded constant.
	ScaleMax int  `mapstructure:"scale_max" yaml:"scale_max"`
	Target   bool `mapstructure:"target" yaml:"target"`
}

// Narrator configures the optional LLM narrative stage.
type Narrator struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	Model      string `mapstructure:"model" yaml:"model"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	RetryMax   int    `mapstructure:"retry_max" yaml:"retry_max"`
}

// Config is the full pipeline configuration.
type Config struct {
	Scenario Scenario `mapstructure:"scenario" yaml:"scenario"`

	DataDir    string `mapstructure:"data_dir" yaml:"data_dir"`
	ResultsDir string `mapstructure:"results_dir" yaml:"results_dir"`
	LogsDir    string `mapstructure:"logs_dir" yaml:"logs_dir"`
	RunDBPath  string `mapstructure:"run_db_path" yaml:"run_db_path"`

	Seed        int64 `mapstructure:"seed" yaml:"seed"`
	CVFolds     int   `mapstructure:"cv_folds" yaml:"cv_folds"`
	ForestTrees int   `mapstructure:"forest_trees" yaml:"forest_trees"`
	BoostRounds int   `mapstructure:"boost_rounds" yaml:"boost_rounds"`
	Clusters    int   `mapstructure:"clusters" yaml:"clusters"`
	// AgreementScaleMax selects the width of the agreement vocabulary
	// (4-point or 5-point); both occur across questionnaire versions.
	AgreementScaleMax int `mapstructure:"agreement_scale_max" yaml:"agreement_scale_max"`
	// InteractionTerms names two predictors whose product is added as an
	// extra OLS variant when both are present.
	InteractionTerms []string `mapstructure:"interaction_terms" yaml:"interaction_terms,omitempty"`

	Groups []Group `mapstructure:"groups" yaml:"groups"`

	Narrator Narrator `mapstructure:"narrator" yaml:"narrator"`
}

// DefaultGroups returns the shipped column-group table for the PISA 2018
// teacher questionnaire. TC item codes follow the public codebook; the
// group table is configuration, so deployments can replace it wholesale.
func DefaultGroups() []Group {
	return []Group{
		{
			Name:        "indice_bem_estar",
			Prefixes:    []string{"tc014q01", "tc015q01", "tc018q01", "tc018q02", "tc018q03", "tc018q04", "tc199q05"},
			Aggregation: "mean",
			ScaleMax:    5,
			Target:      true,
		},
		{
			Name:        "indice_formacao_inicial",
			Prefixes:    []string{"tc014q01", "tc015q01"},
			Aggregation: "sum",
			ScaleMax:    1,
		},
		{
			Name:        "indice_desenv_profissional",
			Prefixes:    []string{"tc018q01", "tc018q02", "tc018q03", "tc018q04", "tc018q05", "tc018q06", "tc018q07", "tc018q08"},
			Aggregation: "sum",
			ScaleMax:    1,
		},
		{
			Name:        "indice_autoeficacia",
			Prefixes:    []string{"tc199q01", "tc199q02", "tc199q03", "tc199q04", "tc199q05"},
			Aggregation: "mean",
			ScaleMax:    4,
		},
		{
			// Obstacles to professional development, flipped so the index
			// reads as support.
			Name:        "indice_apoio_desenvolvimento",
			Prefixes:    []string{"tc028q01", "tc028q02", "tc028q03", "tc028q04"},
			Aggregation: "mean",
			Invert:      true,
			ScaleMax:    4,
		},
		{
			Name:             "indice_satisfacao",
			Prefixes:         []string{"tc198q01", "tc198q02", "tc198q03", "tc198q04"},
			NegativePrefixes: []string{"tc198q02", "tc198q04"},
			Aggregation:      "mean",
			ScaleMax:         4,
		},
	}
}

// Load reads configuration from file, env and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TEACHERWELL")
	v.AutomaticEnv()

	v.SetDefault("scenario.country", "Chile")
	v.SetDefault("scenario.subject", "Matemática")
	v.SetDefault("scenario.audience", "Docentes")
	v.SetDefault("scenario.theme", "Bem-estar docente")
	v.SetDefault("data_dir", "dados")
	v.SetDefault("results_dir", "resultados")
	v.SetDefault("logs_dir", "logs")
	v.SetDefault("run_db_path", filepath.Join("resultados", "runs.db"))
	v.SetDefault("seed", 42)
	v.SetDefault("cv_folds", 5)
	v.SetDefault("forest_trees", 300)
	v.SetDefault("boost_rounds", 200)
	v.SetDefault("clusters", 3)
	v.SetDefault("agreement_scale_max", 5)
	v.SetDefault("narrator.enabled", false)
	v.SetDefault("narrator.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("narrator.model", "openai/gpt-4o-mini")
	v.SetDefault("narrator.timeout_sec", 60)
	v.SetDefault("narrator.retry_max", 3)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".teacherwell")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Groups) == 0 {
		c.Groups = DefaultGroups()
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes the configuration to cfgFile, or to ~/.teacherwell/config.yaml
// when cfgFile is empty.
func Save(c *Config, cfgFile string) error {
	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".teacherwell")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func validate(c *Config) error {
	targets := 0
	for _, g := range c.Groups {
		if g.Target {
			targets++
		}
		switch g.Aggregation {
		case "mean", "sum":
		default:
			return fmt.Errorf("group %q: unsupported aggregation %q (use mean|sum)", g.Name, g.Aggregation)
		}
		if g.ScaleMax <= 0 {
			return fmt.Errorf("group %q: scale_max must be positive", g.Name)
		}
	}
	if targets != 1 {
		return fmt.Errorf("exactly one target group required, found %d", targets)
	}
	if c.AgreementScaleMax != 4 && c.AgreementScaleMax != 5 {
		return fmt.Errorf("agreement_scale_max must be 4 or 5, got %d", c.AgreementScaleMax)
	}
	if c.CVFolds < 2 {
		return fmt.Errorf("cv_folds must be at least 2, got %d", c.CVFolds)
	}
	return nil
}
