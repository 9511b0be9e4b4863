// Package config loads repo-digest settings.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (DIGEST_*)
//  2. Project config (.digest/config.yml)
//  3. Built-in defaults
//
// Nested keys map to environment variables with underscores, for example
// snapshot.max_file_bytes is DIGEST_SNAPSHOT_MAX_FILE_BYTES.
package config

import (
	"github.com/mvp-joe/repo-digest/internal/snapshot"
)

// Config represents the complete repo-digest configuration.
type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot" mapstructure:"snapshot"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Watch    WatchConfig    `yaml:"watch" mapstructure:"watch"`
}

// SnapshotConfig controls file selection and content reduction.
type SnapshotConfig struct {
	Mode          string   `yaml:"mode" mapstructure:"mode"`                       // "full", "signatures" or "paths"
	MaxFileBytes  int64    `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`   // per-file ceiling for stored content
	MaxTotalBytes int64    `yaml:"max_total_bytes" mapstructure:"max_total_bytes"` // budget for all content, 0 for unlimited
	Workers       int      `yaml:"workers" mapstructure:"workers"`                 // concurrent reads, 0 for one per CPU
	IgnoreFile    string   `yaml:"ignore_file" mapstructure:"ignore_file"`         // ignore file at the repository root
	Ignore        []string `yaml:"ignore" mapstructure:"ignore"`                   // extra ignore patterns
	BinaryCheck   string   `yaml:"binary_check" mapstructure:"binary_check"`       // "nul", "utf8" or "both"
}

// CacheConfig controls the in-process extraction cache.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"` // reuse extraction results across builds
	MaxEntries int  `yaml:"max_entries" mapstructure:"max_entries"`
}

// WatchConfig controls rebuilds in watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"` // quiet period before a rebuild
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	opts := snapshot.DefaultOptions()
	return &Config{
		Snapshot: SnapshotConfig{
			Mode:          string(opts.Mode),
			MaxFileBytes:  opts.MaxFileBytes,
			MaxTotalBytes: 0,
			Workers:       0,
			IgnoreFile:    opts.IgnoreFile,
			Ignore: []string{
				".git/",
				".digest/",
				"node_modules/",
				"vendor/",
				"__pycache__/",
				"*.pyc",
				"*.lock",
			},
			BinaryCheck: string(opts.BinaryCheck),
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 10000,
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
	}
}

// SnapshotOptions converts the snapshot section into build options.
func (c *Config) SnapshotOptions() snapshot.Options {
	return snapshot.Options{
		Mode:          snapshot.Mode(c.Snapshot.Mode),
		MaxFileBytes:  c.Snapshot.MaxFileBytes,
		MaxTotalBytes: c.Snapshot.MaxTotalBytes,
		Workers:       c.Snapshot.Workers,
		IgnoreFile:    c.Snapshot.IgnoreFile,
		Ignore:        append([]string(nil), c.Snapshot.Ignore...),
		BinaryCheck:   snapshot.BinaryCheck(c.Snapshot.BinaryCheck),
	}
}
