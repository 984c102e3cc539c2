package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/meenmo/loanlib/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LOANLIB_ENV", "")
	t.Setenv("LOANLIB_SOLVER_ACCURACY", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig, *cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOANLIB_ENV", "production")
	t.Setenv("LOANLIB_LOG_LEVEL", "debug")
	t.Setenv("LOANLIB_SOLVER_ACCURACY", "1e-8")
	t.Setenv("LOANLIB_SOLVER_MAX_EVALUATIONS", "250")
	t.Setenv("LOANLIB_YIELD_GUESS", "0.03")
	t.Setenv("LOANLIB_SETTLEMENT_DAYS", "2")
	t.Setenv("LOANLIB_MAX_CONCURRENCY", "not-a-number")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1e-8, cfg.Solver.Accuracy)
	assert.Equal(t, 250, cfg.Solver.MaxEvaluations)
	assert.Equal(t, 0.03, cfg.Solver.YieldGuess)
	assert.Equal(t, 2, cfg.SettlementDays)
	assert.Equal(t, config.DefaultConfig.MaxConcurrency, cfg.MaxConcurrency, "unparsable values fall back")
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("LOANLIB_ENV", "qa")
	t.Setenv("LOANLIB_SOLVER_MAX_EVALUATIONS", "-1")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	t.Parallel()

	c := config.DefaultConfig
	c.Solver.Accuracy = 0
	c.Solver.MaxEvaluations = 0
	c.MaxConcurrency = 0
	c.LogFormat = "xml"

	err := c.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
}

func TestSetConfig(t *testing.T) {
	orig := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(orig) })

	c := orig
	c.Solver.YieldGuess = 0.07
	config.SetConfig(c)
	assert.Equal(t, 0.07, config.GetConfig().Solver.YieldGuess)
}
