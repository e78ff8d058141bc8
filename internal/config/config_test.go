package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navikt/pensjon-etterlatte-saksbehandling-sub013/internal/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("REGEL_VERSJON", "")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "regler.db", cfg.DatabasePath)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("REGEL_VERSJON", "2024.1")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DatabasePath)
	assert.Equal(t, "2024.1", cfg.RegelVersjon)
}

func TestFromEnv_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "abc")
	_, err := config.FromEnv()
	assert.Error(t, err)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_PATH", "")

	t.Setenv("LOG_LEVEL", "INFO")

	cfg, err := config.Load([]string{"-port", "9090", "-db", ":memory:", "-log-level", "DEBUG"})
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DatabasePath)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoad_UnknownFlag(t *testing.T) {
	_, err := config.Load([]string{"-verbose"})
	assert.Error(t, err)
}
