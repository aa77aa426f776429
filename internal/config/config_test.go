package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asynkron/patchview/pkg/patch"
)

func TestFromEnvReadsOverrides(t *testing.T) {
	t.Setenv("PATCHVIEW_FUZZY_CONTEXT", "25")
	t.Setenv("PATCHVIEW_THEME", "light")
	t.Setenv("PATCHVIEW_LOG_LEVEL", "debug")

	cfg := FromEnv()
	require.Equal(t, 25, cfg.FuzzyContext)
	require.Equal(t, "light", cfg.Theme)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.Strict)
	require.True(t, cfg.Backup)
}

func TestFromEnvBackupOptOut(t *testing.T) {
	t.Setenv("PATCHVIEW_NO_BACKUP", "1")

	cfg := FromEnv()
	require.False(t, cfg.Backup)
}

func TestSetDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	require.Equal(t, patch.DefaultFuzzyContext, cfg.FuzzyContext)
	require.Equal(t, "auto", cfg.Theme)
	require.Equal(t, "INFO", cfg.LogLevel)
	require.NotEmpty(t, cfg.WorkingDir)
}

func TestValidateRejectsUnknownTheme(t *testing.T) {
	cfg := Config{Theme: "solarized"}
	require.Error(t, cfg.Validate())

	cfg.Theme = "dark"
	require.NoError(t, cfg.Validate())
}

func TestEngineOptions(t *testing.T) {
	cfg := Config{Strict: true, FuzzyContext: 42}
	opts := cfg.EngineOptions()
	require.True(t, opts.Strict)
	require.Equal(t, 42, opts.FuzzyContext)
}
