package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mvp-joe/repo-digest/internal/config"
	"github.com/mvp-joe/repo-digest/internal/git"
	"github.com/mvp-joe/repo-digest/internal/ignore"
	"github.com/mvp-joe/repo-digest/internal/parsers"
	"github.com/mvp-joe/repo-digest/internal/prompt"
	"github.com/mvp-joe/repo-digest/internal/snapshot"
	"github.com/mvp-joe/repo-digest/internal/watcher"
	"github.com/spf13/cobra"
)

// snapshotFlags holds the snapshot command line.
type snapshotFlags struct {
	mode  string
	base  string
	head  string
	out   string
	watch bool
	quiet bool
}

var snapFlags snapshotFlags

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write a text snapshot of the repository",
	Long: `Snapshot lists every tracked and untracked file, reads the eligible ones
and writes a directory tree followed by file contents.

Modes:
  full        verbatim file text
  signatures  source files reduced to their public declarations (default)
  paths       directory tree only

With --base and --head, files changed between the two refs are included
in full regardless of mode.

Examples:
  # Snapshot the current directory to stdout
  digest snapshot

  # Full text of a branch's changes on top of an API overview
  digest snapshot --base main --head HEAD --out digest.txt

  # Keep digest.txt up to date while editing
  digest snapshot --out digest.txt --watch
`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapFlags.mode, "mode", "m", "", "Content mode: full, signatures or paths (default from config)")
	snapshotCmd.Flags().StringVar(&snapFlags.base, "base", "", "Base ref for diff-based updates")
	snapshotCmd.Flags().StringVar(&snapFlags.head, "head", "", "Head ref for diff-based updates")
	snapshotCmd.Flags().StringVarP(&snapFlags.out, "out", "o", "", "Write the snapshot to a file instead of stdout")
	snapshotCmd.Flags().BoolVarP(&snapFlags.watch, "watch", "w", false, "Rewrite the output file whenever the working tree changes")
	snapshotCmd.Flags().BoolVarP(&snapFlags.quiet, "quiet", "q", false, "Disable progress bars and non-error output")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	reducer, closeReducer, err := newReducer(cfg)
	if err != nil {
		return err
	}
	defer closeReducer()

	progress := NewCLIProgressReporter(snapFlags.quiet, verbose)
	job, err := newSnapshotJob(rootDir, cfg, git.NewOperations(), reducer, snapFlags, progress, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	for _, line := range job.skippedRules() {
		log.Printf("Warning: skipping invalid ignore pattern %q", line)
	}

	if _, err := job.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("snapshot cancelled")
		}
		return err
	}

	if !snapFlags.watch {
		return nil
	}
	if !snapFlags.quiet {
		log.Println("Starting watch mode...")
	}
	if err := watchSnapshot(ctx, job, cfg); err != nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}
	if !snapFlags.quiet {
		log.Println("Watch mode stopped")
	}
	return nil
}

// newReducer returns the signature reducer for cfg and a release function.
func newReducer(cfg *config.Config) (parsers.Reducer, func(), error) {
	registry := parsers.NewRegistry()
	if !cfg.Cache.Enabled {
		return registry, func() {}, nil
	}
	cached, err := parsers.NewCachedReducer(registry, cfg.Cache.MaxEntries)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create extraction cache: %w", err)
	}
	return cached, cached.Close, nil
}

// snapshotJob builds and writes one snapshot. It is also the watcher's
// Rebuilder, so every rebuild writes the same destination.
type snapshotJob struct {
	builder *snapshot.Builder
	base    string
	head    string
	outPath string    // Empty for stdout
	stdout  io.Writer // Used when outPath is empty
	quiet   bool
}

func newSnapshotJob(rootDir string, cfg *config.Config, ops git.Operations, reducer parsers.Reducer, flags snapshotFlags, progress snapshot.ProgressReporter, stdout io.Writer) (*snapshotJob, error) {
	opts := cfg.SnapshotOptions()
	if flags.mode != "" {
		mode := snapshot.Mode(flags.mode)
		if !mode.Valid() {
			return nil, fmt.Errorf("%w: %q", config.ErrInvalidMode, flags.mode)
		}
		opts.Mode = mode
	}
	if (flags.base == "") != (flags.head == "") {
		return nil, errors.New("--base and --head must be given together")
	}

	var outPath string
	if flags.out != "" {
		abs, err := filepath.Abs(flags.out)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", flags.out, err)
		}
		outPath = abs
	}
	if flags.watch && outPath == "" {
		return nil, errors.New("--watch requires --out")
	}

	return &snapshotJob{
		builder: snapshot.NewBuilder(rootDir, ops, reducer, opts, progress),
		base:    flags.base,
		head:    flags.head,
		outPath: outPath,
		stdout:  stdout,
		quiet:   flags.quiet,
	}, nil
}

// Run builds the snapshot, applies the diff when refs are set and writes
// the formatted text.
func (j *snapshotJob) Run(ctx context.Context) (*snapshot.Stats, error) {
	snap, stats, err := j.builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot failed: %w", err)
	}

	if j.base != "" {
		snap, err = j.builder.Update(ctx, j.base, j.head, snap)
		if err != nil {
			return nil, fmt.Errorf("snapshot update failed: %w", err)
		}
	}

	text := prompt.Format(snap)
	if j.outPath == "" {
		if _, err := fmt.Fprintln(j.stdout, text); err != nil {
			return nil, fmt.Errorf("failed to write snapshot: %w", err)
		}
		return stats, nil
	}

	if err := os.MkdirAll(filepath.Dir(j.outPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(j.outPath, []byte(text), 0644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	return stats, nil
}

// Rebuild implements watcher.Rebuilder.
func (j *snapshotJob) Rebuild(ctx context.Context, changed []string) error {
	stats, err := j.Run(ctx)
	if err != nil {
		return err
	}
	if !j.quiet {
		log.Printf("Rebuilt snapshot after %d change(s): %d files in %.2fs",
			len(changed), stats.Files, stats.Duration.Seconds())
	}
	return nil
}

// skippedRules returns ignore-file lines that are not valid globs.
func (j *snapshotJob) skippedRules() []string {
	rules, err := j.builder.Rules()
	if err != nil {
		return nil
	}
	return rules.Skipped()
}

// watchRules returns the build's ignore rules plus the output file, so
// writing the snapshot does not trigger another rebuild.
func (j *snapshotJob) watchRules() (*ignore.RuleSet, error) {
	rules, err := j.builder.Rules()
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(j.builder.Root(), j.outPath)
	if err == nil && !strings.HasPrefix(rel, "..") {
		if err := rules.Add(filepath.ToSlash(rel)); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// watchSnapshot rebuilds on every debounced change until ctx is done.
func watchSnapshot(ctx context.Context, job *snapshotJob, cfg *config.Config) error {
	rules, err := job.watchRules()
	if err != nil {
		return err
	}

	files, err := watcher.NewFileWatcher(job.builder.Root(), watcher.Options{
		Debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		Ignore:   rules,
	})
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Branch switches are only tracked inside a git checkout.
	gitWatcher, err := watcher.NewGitWatcher(job.builder.Root())
	if err != nil {
		log.Printf("Warning: branch switches will not be detected: %v", err)
		gitWatcher = nil
	}

	coordinator := watcher.NewWatchCoordinator(gitWatcher, files, job)
	if err := coordinator.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
