package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/stepwire/internal/constants"
	"github.com/mrz1836/stepwire/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(context.Background())
	require.NoError(t, err, "Load should not fail when no config file exists")
	require.NotNil(t, cfg)

	assert.Equal(t, constants.DefaultLocale, cfg.Locale)
	assert.Equal(t, constants.DefaultPoolSize, cfg.Execution.PoolSize)
	assert.Equal(t, constants.DefaultParallelism, cfg.Execution.Parallel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Steps.Paths)
}

func TestLoad_ProjectConfig(t *testing.T) {
	project := t.TempDir()
	t.Chdir(project)
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, os.MkdirAll(filepath.Join(project, constants.StepwireHome), 0o750))
	writeConfig(t, filepath.Join(project, constants.StepwireHome), "locale: de-DE\nexecution:\n  strict: true\n")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "de-DE", cfg.Locale)
	assert.True(t, cfg.Execution.Strict)
}

func TestLoadFromPaths_ProjectConfigOverridesGlobal(t *testing.T) {
	ctx := context.Background()

	globalConfig := writeConfig(t, t.TempDir(), `
locale: fr
execution:
  pool_size: 4
  parallel: 2
log:
  level: debug
`)
	projectConfig := writeConfig(t, t.TempDir(), `
locale: de
steps:
  paths:
    - steps/
    - more/*.yaml
  default_timeout: 250ms
`)

	cfg, err := LoadFromPaths(ctx, projectConfig, globalConfig)
	require.NoError(t, err)

	assert.Equal(t, "de", cfg.Locale, "project should override global")
	assert.Equal(t, 4, cfg.Execution.PoolSize, "global values survive when project omits them")
	assert.Equal(t, 2, cfg.Execution.Parallel)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"steps/", "more/*.yaml"}, cfg.Steps.Paths)
	assert.Equal(t, 250*time.Millisecond, cfg.Steps.DefaultTimeout)
}

func TestLoadFromPaths_MissingFilesUseDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromPaths(context.Background(), filepath.Join(dir, "missing.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Execution, cfg.Execution)
}

func TestLoadFromPaths_EnvOverridesFiles(t *testing.T) {
	t.Setenv("STEPWIRE_LOCALE", "es")
	t.Setenv("STEPWIRE_EXECUTION_PARALLEL", "3")
	t.Setenv("STEPWIRE_STEPS_PATHS", "a.yaml,b.yaml")

	project := writeConfig(t, t.TempDir(), "locale: de\n")

	cfg, err := LoadFromPaths(context.Background(), project, "")
	require.NoError(t, err)

	assert.Equal(t, "es", cfg.Locale)
	assert.Equal(t, 3, cfg.Execution.Parallel)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.Steps.Paths)
}

func TestLoadFromPaths_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"bad locale", "locale: '!!'\n", errors.ErrConfigInvalidLocale},
		{"zero pool", "execution:\n  pool_size: 0\n", errors.ErrConfigInvalidExecution},
		{"negative timeout", "steps:\n  default_timeout: -1s\n", errors.ErrConfigInvalidSteps},
		{"bad level", "log:\n  level: shouting\n", errors.ErrConfigInvalidLog},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tc.content)

			_, err := LoadFromPaths(context.Background(), path, "")

			require.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoadFromPaths_MalformedYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "locale: [unclosed\n")

	_, err := LoadFromPaths(context.Background(), path, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read project config")
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "execution:\n  parallel: 8\n")

	cfg, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Execution.Parallel)

	_, err = LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps.Paths = []string{"configured.yaml"}

	got, err := Apply(cfg, &Config{
		Locale:    "de",
		Steps:     StepsConfig{Paths: []string{"flag.yaml"}, DefaultTimeout: time.Second},
		Execution: ExecutionConfig{Parallel: 4, Strict: true},
		Log:       LogConfig{Level: "warn"},
		Metrics:   MetricsConfig{Textfile: "run.prom"},
	})
	require.NoError(t, err)

	assert.Equal(t, "de", got.Locale)
	assert.Equal(t, []string{"configured.yaml", "flag.yaml"}, got.Steps.Paths)
	assert.Equal(t, time.Second, got.Steps.DefaultTimeout)
	assert.Equal(t, 4, got.Execution.Parallel)
	assert.Equal(t, constants.DefaultPoolSize, got.Execution.PoolSize, "zero overrides are ignored")
	assert.True(t, got.Execution.Strict)
	assert.Equal(t, "warn", got.Log.Level)
	assert.Equal(t, "run.prom", got.Metrics.Textfile)

	_, err = Apply(DefaultConfig(), &Config{Execution: ExecutionConfig{Parallel: -1}})
	require.ErrorIs(t, err, errors.ErrConfigInvalidExecution)
}
