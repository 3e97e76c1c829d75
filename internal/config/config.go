package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the quantstarter toolkit.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Backtest Backtest `yaml:"backtest"`
	Data     Data     `yaml:"data"`
	Tuning   Tuning   `yaml:"tuning"`
	Logging  Logging  `yaml:"logging"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Backtest holds default engine parameters; CLI flags override them per run.
type Backtest struct {
	InitialCapital  float64 `yaml:"initial_capital"`
	TransactionCost float64 `yaml:"transaction_cost"`
	MaxLeverage     float64 `yaml:"max_leverage"`
	MinPositionSize float64 `yaml:"min_position_size"`
	Rebalance       string  `yaml:"rebalance"`
	Scheme          string  `yaml:"scheme"`
}

// Data controls synthetic price generation.
type Data struct {
	Symbols   int    `yaml:"symbols"`
	Days      int    `yaml:"days"`
	StartDate string `yaml:"start_date"`
	Seed      int64  `yaml:"seed"`
}

// Tuning controls hyperparameter search runs.
type Tuning struct {
	Study   string `yaml:"study"`
	Workers int    `yaml:"workers"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/quantstarter.db",
		},
		Backtest: Backtest{
			InitialCapital:  1_000_000,
			TransactionCost: 0.001,
			MaxLeverage:     1.0,
			MinPositionSize: 0.001,
			Rebalance:       "daily",
			Scheme:          "rank",
		},
		Data: Data{
			Symbols:   10,
			Days:      1000,
			StartDate: "2020-01-01",
			Seed:      42,
		},
		Tuning: Tuning{
			Study:   "default",
			Workers: 4,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it on top
// of the defaults, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadOrDefault loads the file at path when it is non-empty, otherwise it
// returns the defaults. Environment overrides apply in both cases.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
