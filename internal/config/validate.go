package config

import (
	"errors"
	"fmt"

	"github.com/mvp-joe/repo-digest/internal/ignore"
	"github.com/mvp-joe/repo-digest/internal/snapshot"
)

var (
	// ErrInvalidMode indicates an unknown snapshot mode
	ErrInvalidMode = errors.New("invalid snapshot mode")

	// ErrInvalidLimit indicates a negative size, count or duration
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidBinaryCheck indicates an unknown binary detection heuristic
	ErrInvalidBinaryCheck = errors.New("invalid binary check")

	// ErrInvalidPattern indicates an ignore pattern that does not compile
	ErrInvalidPattern = errors.New("invalid ignore pattern")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")
)

// Validate checks that the configuration is valid and complete. Every
// problem is reported; use errors.Is to test for a specific one.
func Validate(cfg *Config) error {
	return errors.Join(
		validateSnapshot(&cfg.Snapshot),
		validateCache(&cfg.Cache),
		validateWatch(&cfg.Watch),
	)
}

func validateSnapshot(cfg *SnapshotConfig) error {
	var errs []error

	if !snapshot.Mode(cfg.Mode).Valid() {
		errs = append(errs, fmt.Errorf("%w: must be 'full', 'signatures' or 'paths', got '%s'", ErrInvalidMode, cfg.Mode))
	}

	if cfg.MaxFileBytes < 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_bytes cannot be negative, got %d", ErrInvalidLimit, cfg.MaxFileBytes))
	}
	if cfg.MaxTotalBytes < 0 {
		errs = append(errs, fmt.Errorf("%w: max_total_bytes cannot be negative, got %d", ErrInvalidLimit, cfg.MaxTotalBytes))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidLimit, cfg.Workers))
	}

	if !snapshot.BinaryCheck(cfg.BinaryCheck).Valid() {
		errs = append(errs, fmt.Errorf("%w: must be 'nul', 'utf8' or 'both', got '%s'", ErrInvalidBinaryCheck, cfg.BinaryCheck))
	}

	if _, err := ignore.New(cfg.Ignore); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidPattern, err))
	}

	return errors.Join(errs...)
}

func validateCache(cfg *CacheConfig) error {
	if cfg.Enabled && cfg.MaxEntries <= 0 {
		return fmt.Errorf("%w: max_entries must be positive when the cache is enabled, got %d", ErrInvalidCacheSettings, cfg.MaxEntries)
	}
	return nil
}

func validateWatch(cfg *WatchConfig) error {
	if cfg.DebounceMS < 0 {
		return fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidLimit, cfg.DebounceMS)
	}
	return nil
}
