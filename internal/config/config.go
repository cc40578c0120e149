// Package config loads and saves snowball's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/theirongolddev/snowball/internal/model"
)

// Config holds all snowball configuration.
type Config struct {
	Plan       PlanConfig       `toml:"plan"`
	Benchmark  BenchmarkConfig  `toml:"benchmark"`
	Chart      ChartConfig      `toml:"chart"`
	Output     OutputConfig     `toml:"output"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
	History    HistoryConfig    `toml:"history"`
}

// PlanConfig holds the default simulation inputs.
type PlanConfig struct {
	InitialBalance      float64 `toml:"initial_balance" env:"SNOWBALL_INITIAL"`
	MonthlyContribution float64 `toml:"monthly_contribution" env:"SNOWBALL_CONTRIBUTION"`
	AnnualGrowthRate    float64 `toml:"annual_growth_rate" env:"SNOWBALL_GROWTH"`
	AnnualYieldRate     float64 `toml:"annual_yield_rate" env:"SNOWBALL_YIELD"`
	TargetIncome        float64 `toml:"target_income" env:"SNOWBALL_TARGET"`
	DurationMonths      int     `toml:"duration_months" env:"SNOWBALL_DURATION_MONTHS"`
	MaxYears            int     `toml:"max_years" env:"SNOWBALL_MAX_YEARS"`
}

// BenchmarkConfig holds the fixed-income reference rate.
type BenchmarkConfig struct {
	Name       string  `toml:"name" env:"SNOWBALL_BENCHMARK_NAME"`
	AnnualRate float64 `toml:"annual_rate" env:"SNOWBALL_BENCHMARK_RATE"`
}

// ChartConfig holds chart sampling and display settings.
type ChartConfig struct {
	SampleInterval int  `toml:"sample_interval" env:"SNOWBALL_SAMPLE_INTERVAL"`
	Show           bool `toml:"show" env:"SNOWBALL_CHART"`
	Height         int  `toml:"height"`
}

// OutputConfig holds number formatting settings.
type OutputConfig struct {
	Locale         string `toml:"locale" env:"SNOWBALL_LOCALE"`
	CurrencySymbol string `toml:"currency_symbol" env:"SNOWBALL_CURRENCY"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" env:"SNOWBALL_THEME"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"SNOWBALL_LOG_LEVEL"`
}

// HistoryConfig controls the run history store.
type HistoryConfig struct {
	Enabled bool `toml:"enabled" env:"SNOWBALL_HISTORY"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Plan: PlanConfig{
			InitialBalance:      15000,
			MonthlyContribution: 1000,
			AnnualGrowthRate:    0.10,
			AnnualYieldRate:     0.069,
			DurationMonths:      120,
			MaxYears:            200,
		},
		Benchmark: BenchmarkConfig{
			Name:       "CDI",
			AnnualRate: 0.1365,
		},
		Chart: ChartConfig{
			SampleInterval: model.DefaultSampleInterval,
			Show:           true,
			Height:         16,
		},
		Output: OutputConfig{
			Locale:         "en",
			CurrencySymbol: "R$",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "warn",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// Params converts the plan section into projection inputs.
func (c Config) Params() model.Params {
	return model.Params{
		InitialBalance:      c.Plan.InitialBalance,
		MonthlyContribution: c.Plan.MonthlyContribution,
		AnnualGrowthRate:    c.Plan.AnnualGrowthRate,
		AnnualYieldRate:     c.Plan.AnnualYieldRate,
		TargetIncome:        c.Plan.TargetIncome,
		DurationMonths:      c.Plan.DurationMonths,
		SampleInterval:      c.Chart.SampleInterval,
		BenchmarkRate:       c.Benchmark.AnnualRate,
		MaxMonths:           c.Plan.MaxYears * 12,
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "snowball")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "snowball")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top of the file.
func Load() (Config, error) {
	cfg, err := LoadFrom(Path())
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg, nil); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFrom reads the config file at path without environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides cfg with SNOWBALL_* variables. A nil environ reads the
// process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
