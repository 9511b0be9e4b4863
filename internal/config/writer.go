package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by Write when a config file is already present
// and overwrite was not requested.
var ErrConfigExists = errors.New("config file already exists")

// Path returns the project config file location for rootDir.
func Path(rootDir string) string {
	return filepath.Join(rootDir, DirName, FileName)
}

// Write stores cfg as YAML under rootDir and returns the file path.
func Write(rootDir string, cfg *Config, overwrite bool) (string, error) {
	path := Path(rootDir)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
