package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/repo-digest/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() loads from .digest/config.yml and .digest/config.yaml
// - Load() merges a partial config file with defaults
// - Environment variables override config file values and defaults
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects unknown modes, negative limits, bad heuristics and patterns
// - Validate() reports every problem at once
// - Write() round-trips through Load() and refuses to clobber by default
// - SnapshotOptions() carries every field over

func writeConfig(t *testing.T, rootDir, name, content string) {
	t.Helper()
	dir := filepath.Join(rootDir, DirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "signatures", cfg.Snapshot.Mode)
	assert.Equal(t, int64(1<<20), cfg.Snapshot.MaxFileBytes)
	assert.Equal(t, int64(0), cfg.Snapshot.MaxTotalBytes)
	assert.Equal(t, 0, cfg.Snapshot.Workers)
	assert.Equal(t, ".digestignore", cfg.Snapshot.IgnoreFile)
	assert.Equal(t, "both", cfg.Snapshot.BinaryCheck)
	assert.Contains(t, cfg.Snapshot.Ignore, "node_modules/")

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
	assert.Equal(t, 500, cfg.Watch.DebounceMS)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
snapshot:
  mode: full
  max_file_bytes: 2048
  max_total_bytes: 100000
  workers: 4
  ignore_file: .myignore
  ignore:
    - "*.log"
    - "dist/"
  binary_check: nul

cache:
  enabled: false
  max_entries: 0

watch:
  debounce_ms: 250
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "full", cfg.Snapshot.Mode)
	assert.Equal(t, int64(2048), cfg.Snapshot.MaxFileBytes)
	assert.Equal(t, int64(100000), cfg.Snapshot.MaxTotalBytes)
	assert.Equal(t, 4, cfg.Snapshot.Workers)
	assert.Equal(t, ".myignore", cfg.Snapshot.IgnoreFile)
	assert.Equal(t, []string{"*.log", "dist/"}, cfg.Snapshot.Ignore)
	assert.Equal(t, "nul", cfg.Snapshot.BinaryCheck)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 250, cfg.Watch.DebounceMS)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", "snapshot:\n  mode: paths\n")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)
	assert.Equal(t, "paths", cfg.Snapshot.Mode)
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "snapshot:\n  workers: 2\n")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Snapshot.Workers)
	assert.Equal(t, "signatures", cfg.Snapshot.Mode)
	assert.Equal(t, int64(1<<20), cfg.Snapshot.MaxFileBytes)
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "snapshot:\n  mode: full\n  workers: 2\n")

	t.Setenv("DIGEST_SNAPSHOT_MODE", "paths")
	t.Setenv("DIGEST_SNAPSHOT_MAX_FILE_BYTES", "4096")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "paths", cfg.Snapshot.Mode)
	assert.Equal(t, int64(4096), cfg.Snapshot.MaxFileBytes)
	assert.Equal(t, 2, cfg.Snapshot.Workers)
}

func TestLoadConfig_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("DIGEST_CACHE_ENABLED", "false")
	t.Setenv("DIGEST_WATCH_DEBOUNCE_MS", "50")

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 50, cfg.Watch.DebounceMS)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "snapshot:\n  mode: [unclosed\n")

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "snapshot:\n  mode: lsp\n")

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown mode", func(c *Config) { c.Snapshot.Mode = "none" }, ErrInvalidMode},
		{"negative file ceiling", func(c *Config) { c.Snapshot.MaxFileBytes = -1 }, ErrInvalidLimit},
		{"negative budget", func(c *Config) { c.Snapshot.MaxTotalBytes = -1 }, ErrInvalidLimit},
		{"negative workers", func(c *Config) { c.Snapshot.Workers = -2 }, ErrInvalidLimit},
		{"unknown binary check", func(c *Config) { c.Snapshot.BinaryCheck = "magic" }, ErrInvalidBinaryCheck},
		{"bad pattern", func(c *Config) { c.Snapshot.Ignore = []string{"[unclosed"} }, ErrInvalidPattern},
		{"cache without entries", func(c *Config) { c.Cache.MaxEntries = 0 }, ErrInvalidCacheSettings},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -1 }, ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestValidate_DisabledCacheIgnoresSize(t *testing.T) {
	cfg := Default()
	cfg.Cache.Enabled = false
	cfg.Cache.MaxEntries = 0
	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Snapshot.Mode = "bogus"
	cfg.Snapshot.Workers = -1
	cfg.Snapshot.BinaryCheck = "x"

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.ErrorIs(t, err, ErrInvalidBinaryCheck)
}

func TestWrite_RoundTrip(t *testing.T) {
	tempDir := t.TempDir()

	cfg := Default()
	cfg.Snapshot.Mode = "full"
	cfg.Snapshot.Ignore = []string{"build/"}

	path, err := Write(tempDir, cfg, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, ".digest", "config.yml"), path)

	loaded, err := NewLoader(tempDir).Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Write(tempDir, Default(), false)
	assert.ErrorIs(t, err, ErrConfigExists)

	_, err = Write(tempDir, Default(), true)
	require.NoError(t, err)
	loaded, err = NewLoader(tempDir).Load()
	require.NoError(t, err)
	assert.Equal(t, "signatures", loaded.Snapshot.Mode)
}

func TestSnapshotOptions(t *testing.T) {
	cfg := Default()
	cfg.Snapshot.Workers = 3
	cfg.Snapshot.MaxTotalBytes = 99

	opts := cfg.SnapshotOptions()
	assert.Equal(t, snapshot.ModeSignatures, opts.Mode)
	assert.Equal(t, int64(1<<20), opts.MaxFileBytes)
	assert.Equal(t, int64(99), opts.MaxTotalBytes)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, ".digestignore", opts.IgnoreFile)
	assert.Equal(t, cfg.Snapshot.Ignore, opts.Ignore)
	assert.Equal(t, snapshot.BinaryCheckBoth, opts.BinaryCheck)
}
