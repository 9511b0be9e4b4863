package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/repo-digest/internal/config"
	"github.com/spf13/cobra"
)

var (
	rootDirFlag string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "digest",
	Short: "Digest - Codebase snapshots for LLM prompts",
	Long: `Digest turns a git working tree into a single text snapshot: a directory
tree of every tracked and untracked file followed by file contents, with
source files optionally reduced to their public API.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDirFlag, "dir", "C", "", "repository root (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// projectRoot returns the absolute repository root selected by --dir.
func projectRoot() (string, error) {
	dir := rootDirFlag
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return abs, nil
}

// loadProject resolves the repository root and its configuration.
func loadProject() (string, *config.Config, error) {
	rootDir, err := projectRoot()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		if _, err := os.Stat(config.Path(rootDir)); err == nil {
			fmt.Fprintln(os.Stderr, "Using config file:", config.Path(rootDir))
		}
	}
	return rootDir, cfg, nil
}
