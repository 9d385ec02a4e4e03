package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("child_fraction: 0.4\nlog_calls: true\ndrag_step: 3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.4, cfg.ChildFraction)
	assert.True(t, cfg.LogCalls)
	assert.Equal(t, 0.25, cfg.DragStep, "out of range values fall back")
	assert.Equal(t, 400.0, cfg.VelocityThreshold)
	assert.Equal(t, 1.0, cfg.TopMargin)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("child_fraction: [\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.DBPath = "/tmp/tasks.db"
	cfg.BottomMargin = 2

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestResolve_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: /from/file.db\n"), 0o600))

	t.Setenv(EnvConfig, path)
	t.Setenv(EnvDB, "/from/env.db")
	t.Setenv(EnvLogCalls, "1")

	cfg, gotPath, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)
	assert.Equal(t, "/from/env.db", cfg.DBPath)
	assert.True(t, cfg.LogCalls)
}

func TestResolve_DBDefaultsNextToConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvDB, "")
	t.Setenv(EnvLogCalls, "not-a-bool")

	cfg, _, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tempo.db"), cfg.DBPath)
	assert.False(t, cfg.LogCalls, "invalid override is ignored")
}
