package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DirName is the project configuration directory under the repository root.
	DirName = ".digest"
	// FileName is the configuration file inside DirName.
	FileName = "config.yml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "DIGEST"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DIGEST_*)
// 2. Config file (.digest/config.yml or .digest/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, DirName))

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal only sees environment values for bound keys.
	for _, key := range []string{
		"snapshot.mode",
		"snapshot.max_file_bytes",
		"snapshot.max_total_bytes",
		"snapshot.workers",
		"snapshot.ignore_file",
		"snapshot.binary_check",
		"cache.enabled",
		"cache.max_entries",
		"watch.debounce_ms",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("snapshot.mode", defaults.Snapshot.Mode)
	v.SetDefault("snapshot.max_file_bytes", defaults.Snapshot.MaxFileBytes)
	v.SetDefault("snapshot.max_total_bytes", defaults.Snapshot.MaxTotalBytes)
	v.SetDefault("snapshot.workers", defaults.Snapshot.Workers)
	v.SetDefault("snapshot.ignore_file", defaults.Snapshot.IgnoreFile)
	v.SetDefault("snapshot.ignore", defaults.Snapshot.Ignore)
	v.SetDefault("snapshot.binary_check", defaults.Snapshot.BinaryCheck)

	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.max_entries", defaults.Cache.MaxEntries)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMS)
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

// LoadConfig loads configuration rooted at the current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}
