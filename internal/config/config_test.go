package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Create a temporary YAML config file.
	yamlContent := []byte(`
storage:
  data_dir: "/tmp/quantstarter/data"
  sqlite_path: "/tmp/quantstarter/quantstarter.db"
backtest:
  initial_capital: 500000
  transaction_cost: 0.002
  max_leverage: 1.5
  min_position_size: 0.005
  rebalance: "weekly"
  scheme: "zscore"
data:
  symbols: 20
  days: 500
  start_date: "2021-06-01"
  seed: 7
tuning:
  study: "momentum-sweep"
  workers: 8
logging:
  level: "debug"
  format: "text"
`)

	tmpFile, err := os.CreateTemp("", "quantstarter-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	// Clear any environment overrides that might interfere.
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/quantstarter/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/quantstarter/data")
	}
	if cfg.Storage.SQLitePath != "/tmp/quantstarter/quantstarter.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/quantstarter/quantstarter.db")
	}

	// -- Backtest --
	if cfg.Backtest.InitialCapital != 500000 {
		t.Errorf("Backtest.InitialCapital = %f, want %f", cfg.Backtest.InitialCapital, 500000.0)
	}
	if cfg.Backtest.TransactionCost != 0.002 {
		t.Errorf("Backtest.TransactionCost = %f, want %f", cfg.Backtest.TransactionCost, 0.002)
	}
	if cfg.Backtest.MaxLeverage != 1.5 {
		t.Errorf("Backtest.MaxLeverage = %f, want %f", cfg.Backtest.MaxLeverage, 1.5)
	}
	if cfg.Backtest.Rebalance != "weekly" {
		t.Errorf("Backtest.Rebalance = %q, want %q", cfg.Backtest.Rebalance, "weekly")
	}
	if cfg.Backtest.Scheme != "zscore" {
		t.Errorf("Backtest.Scheme = %q, want %q", cfg.Backtest.Scheme, "zscore")
	}

	// -- Data --
	if cfg.Data.Symbols != 20 {
		t.Errorf("Data.Symbols = %d, want %d", cfg.Data.Symbols, 20)
	}
	if cfg.Data.Days != 500 {
		t.Errorf("Data.Days = %d, want %d", cfg.Data.Days, 500)
	}
	if cfg.Data.StartDate != "2021-06-01" {
		t.Errorf("Data.StartDate = %q, want %q", cfg.Data.StartDate, "2021-06-01")
	}
	if cfg.Data.Seed != 7 {
		t.Errorf("Data.Seed = %d, want %d", cfg.Data.Seed, 7)
	}

	// -- Tuning --
	if cfg.Tuning.Study != "momentum-sweep" {
		t.Errorf("Tuning.Study = %q, want %q", cfg.Tuning.Study, "momentum-sweep")
	}
	if cfg.Tuning.Workers != 8 {
		t.Errorf("Tuning.Workers = %d, want %d", cfg.Tuning.Workers, 8)
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	// A file that only sets one section should keep defaults elsewhere.
	yamlContent := []byte(`
data:
  symbols: 5
`)

	tmpFile, err := os.CreateTemp("", "quantstarter-config-partial-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Unsetenv("DATA_DIR")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Data.Symbols != 5 {
		t.Errorf("Data.Symbols = %d, want %d", cfg.Data.Symbols, 5)
	}
	def := Default()
	if cfg.Backtest.InitialCapital != def.Backtest.InitialCapital {
		t.Errorf("Backtest.InitialCapital = %f, want default %f",
			cfg.Backtest.InitialCapital, def.Backtest.InitialCapital)
	}
	if cfg.Backtest.Rebalance != def.Backtest.Rebalance {
		t.Errorf("Backtest.Rebalance = %q, want default %q", cfg.Backtest.Rebalance, def.Backtest.Rebalance)
	}
	if cfg.Storage.SQLitePath != def.Storage.SQLitePath {
		t.Errorf("Storage.SQLitePath = %q, want default %q", cfg.Storage.SQLitePath, def.Storage.SQLitePath)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
storage:
  data_dir: "/original/data"
  sqlite_path: "/original/quantstarter.db"
logging:
  level: "info"
`)

	tmpFile, err := os.CreateTemp("", "quantstarter-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	// Set environment overrides.
	os.Setenv("DATA_DIR", "/env/data")
	os.Setenv("LOG_LEVEL", "warn")
	os.Unsetenv("SQLITE_PATH")
	defer os.Unsetenv("DATA_DIR")
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
	// sqlite_path should remain from YAML since no env override was set.
	if cfg.Storage.SQLitePath != "/original/quantstarter.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q (from YAML)", cfg.Storage.SQLitePath, "/original/quantstarter.db")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q (env override)", cfg.Logging.Level, "warn")
	}
}
