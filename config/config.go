package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

const envPrefix = "LOANLIB_"

// Config holds solver parameters and process settings.
type Config struct {
	Env       string // development, staging, production
	LogLevel  string
	LogFormat string // json, console

	Solver SolverConfig

	// SettlementDays is used by the CLI when a loan file omits it.
	SettlementDays int

	// MaxConcurrency caps the number of loans priced at once by the CLI.
	MaxConcurrency int
}

// SolverConfig parameterizes yield and z-spread inversion.
type SolverConfig struct {
	// Accuracy is the absolute tolerance on the solved rate.
	Accuracy float64

	// MaxEvaluations bounds objective evaluations, bracketing included.
	MaxEvaluations int

	// YieldGuess and YieldStep seed the bracket search for yields.
	YieldGuess float64
	YieldStep  float64

	// ZSpreadGuess and ZSpreadStep seed the bracket search for z-spreads.
	ZSpreadGuess float64
	ZSpreadStep  float64
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Env:       "development",
	LogLevel:  "info",
	LogFormat: "json",
	Solver: SolverConfig{
		Accuracy:       1e-10,
		MaxEvaluations: 100,
		YieldGuess:     0.05,
		YieldStep:      0.005,
		ZSpreadGuess:   0.0,
		ZSpreadStep:    0.01,
	},
	SettlementDays: 0,
	MaxConcurrency: 8,
}

var (
	mu  sync.RWMutex
	cfg = DefaultConfig
)

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Load reads an optional .env file, then LOANLIB_* variables over DefaultConfig.
func Load() (*Config, error) {
	loadEnvFile()

	d := DefaultConfig
	c := &Config{
		Env:       getEnv("ENV", d.Env),
		LogLevel:  getEnv("LOG_LEVEL", d.LogLevel),
		LogFormat: getEnv("LOG_FORMAT", d.LogFormat),
		Solver: SolverConfig{
			Accuracy:       getEnvAsFloat("SOLVER_ACCURACY", d.Solver.Accuracy),
			MaxEvaluations: getEnvAsInt("SOLVER_MAX_EVALUATIONS", d.Solver.MaxEvaluations),
			YieldGuess:     getEnvAsFloat("YIELD_GUESS", d.Solver.YieldGuess),
			YieldStep:      getEnvAsFloat("YIELD_STEP", d.Solver.YieldStep),
			ZSpreadGuess:   getEnvAsFloat("ZSPREAD_GUESS", d.Solver.ZSpreadGuess),
			ZSpreadStep:    getEnvAsFloat("ZSPREAD_STEP", d.Solver.ZSpreadStep),
		},
		SettlementDays: getEnvAsInt("SETTLEMENT_DAYS", d.SettlementDays),
		MaxConcurrency: getEnvAsInt("MAX_CONCURRENCY", d.MaxConcurrency),
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var err error
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		err = multierr.Append(err, fmt.Errorf("ENV must be one of: development, staging, production"))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" && c.LogFormat != "pretty" {
		err = multierr.Append(err, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat))
	}
	if c.Solver.Accuracy <= 0 {
		err = multierr.Append(err, fmt.Errorf("solver accuracy must be positive, got %v", c.Solver.Accuracy))
	}
	if c.Solver.MaxEvaluations <= 0 {
		err = multierr.Append(err, fmt.Errorf("solver max evaluations must be positive, got %d", c.Solver.MaxEvaluations))
	}
	if c.Solver.YieldStep == 0 || c.Solver.ZSpreadStep == 0 {
		err = multierr.Append(err, fmt.Errorf("solver bracket steps must be non-zero"))
	}
	if c.SettlementDays < 0 {
		err = multierr.Append(err, fmt.Errorf("settlement days must be non-negative, got %d", c.SettlementDays))
	}
	if c.MaxConcurrency <= 0 {
		err = multierr.Append(err, fmt.Errorf("max concurrency must be positive, got %d", c.MaxConcurrency))
	}
	return err
}

func loadEnvFile() {
	paths := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), ".env"))
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(envPrefix + key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(envPrefix+key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}
