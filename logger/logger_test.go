package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/loanlib/config"
	"github.com/meenmo/loanlib/logger"
)

func TestNewWithWriter_JSON(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig
	cfg.Env = "staging"
	cfg.LogLevel = "debug"

	var buf bytes.Buffer
	log := logger.NewWithWriter(&cfg, &buf)
	log.Debug().Str("loan", "term-a").Msg("priced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "staging", entry["env"])
	assert.Equal(t, "term-a", entry["loan"])
	assert.Equal(t, "priced", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	log := logger.NewWithWriter(&cfg, &buf)
	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewWithWriter_Console(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig
	cfg.LogFormat = "console"

	var buf bytes.Buffer
	log := logger.NewWithWriter(&cfg, &buf)
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, logger.ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"))
}

func TestOrNop(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zerolog.Disabled, logger.OrNop(nil).GetLevel())

	var buf bytes.Buffer
	l := zerolog.New(&buf)
	nop := logger.OrNop(&l)
	nop.Info().Msg("x")
	assert.NotZero(t, buf.Len())
}
