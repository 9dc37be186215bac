package experiments

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives a benchmark run: a list of scenarios and where to put the
// parquet output.
type Config struct {
	OutDir    string     `yaml:"out_dir"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario names a problem and the solver knobs to run it with. Zero-valued
// knobs keep the solver defaults.
type Scenario struct {
	Problem         string  `yaml:"problem"` // tiger, baby or lightdark
	Episodes        int     `yaml:"episodes"`
	Steps           int     `yaml:"steps"`
	TimeBudgetMS    int     `yaml:"time_budget_ms"`
	MaxTrials       int     `yaml:"max_trials"`
	MaxDepth        int     `yaml:"max_depth"`
	MMin            int     `yaml:"m_min"`
	MMax            int     `yaml:"m_max"`
	Delta           float64 `yaml:"delta"`
	FilterParticles int     `yaml:"filter_particles"`
	Seed            uint64  `yaml:"seed"`
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "runs"
	}
	if len(cfg.Scenarios) == 0 {
		return Config{}, fmt.Errorf("config %s names no scenarios", path)
	}
	return cfg, nil
}

// DefaultConfig is the built-in benchmark: all three problems at moderate
// budgets.
func DefaultConfig() Config {
	return Config{
		OutDir: "runs",
		Scenarios: []Scenario{
			{Problem: "tiger", Episodes: 5, Steps: 10, TimeBudgetMS: 100, Seed: 1},
			{Problem: "baby", Episodes: 5, Steps: 20, TimeBudgetMS: 100, MMin: 200, Seed: 2},
			{Problem: "lightdark", Episodes: 5, Steps: 50, TimeBudgetMS: 200, Delta: 1.0, Seed: 3},
		},
	}
}
