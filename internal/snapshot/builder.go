package snapshot

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mvp-joe/repo-digest/internal/extraction"
	"github.com/mvp-joe/repo-digest/internal/git"
	"github.com/mvp-joe/repo-digest/internal/ignore"
	"github.com/mvp-joe/repo-digest/internal/parsers"
	"golang.org/x/sync/errgroup"
)

// Builder assembles snapshots of one repository.
type Builder struct {
	root     string
	git      git.Operations
	reducer  parsers.Reducer
	opts     Options
	progress ProgressReporter
}

// NewBuilder creates a Builder. A nil reducer uses the built-in registry and
// a nil progress reporter discards progress.
func NewBuilder(root string, ops git.Operations, reducer parsers.Reducer, opts Options, progress ProgressReporter) *Builder {
	if reducer == nil {
		reducer = parsers.NewRegistry()
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	if opts.Mode == "" {
		opts.Mode = ModeSignatures
	}
	return &Builder{
		root:     root,
		git:      ops,
		reducer:  reducer,
		opts:     opts,
		progress: progress,
	}
}

// Root returns the repository root.
func (b *Builder) Root() string {
	return b.root
}

// fileResult is the outcome of reading and reducing one path.
type fileResult struct {
	content string
	ok      bool
	reason  SkipReason
	stage   extraction.Stage
}

// Build selects, reads and reduces every eligible file. Output depends only
// on repository state and options, never on scheduling.
func (b *Builder) Build(ctx context.Context) (*Snapshot, *Stats, error) {
	start := time.Now()
	stats := newStats(uuid.New().String(), b.opts.Mode)

	rules, err := b.loadRules()
	if err != nil {
		return nil, nil, err
	}

	paths, err := NewSelector(b.root, b.git, rules).Select(ctx)
	if err != nil {
		return nil, nil, err
	}
	b.progress.OnSelectComplete(len(paths))

	snap := &Snapshot{Paths: paths, Contents: make(map[string]string)}
	stats.Files = len(paths)

	if b.opts.Mode == ModePaths {
		stats.Duration = time.Since(start)
		b.progress.OnComplete(stats)
		return snap, stats, nil
	}

	results, readBytes, err := b.processFiles(ctx, paths)
	if err != nil {
		return nil, nil, err
	}
	stats.ReadBytes = readBytes

	// Budget is applied in path order so the cut is reproducible.
	var used int64
	for i, p := range paths {
		r := results[i]
		switch r.stage {
		case extraction.StagePrimary:
			stats.Extracted++
		case extraction.StageFallback:
			stats.Extracted++
			stats.Fallbacks++
		case extraction.StageFailed:
			stats.Failed++
		}
		if !r.ok {
			stats.Skipped[r.reason]++
			continue
		}
		size := int64(len(r.content))
		if b.opts.MaxTotalBytes > 0 && used+size > b.opts.MaxTotalBytes {
			stats.Skipped[SkipBudget]++
			continue
		}
		used += size
		snap.Contents[p] = r.content
	}
	stats.Contents = len(snap.Contents)
	stats.Bytes = used
	stats.Duration = time.Since(start)

	b.progress.OnComplete(stats)
	return snap, stats, nil
}

// processFiles reads and reduces paths concurrently. Results are indexed by
// path position.
func (b *Builder) processFiles(ctx context.Context, paths []string) ([]fileResult, int64, error) {
	results := make([]fileResult, len(paths))
	var readBytes atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers())

	for i, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.processFile(p, &readBytes)
			b.progress.OnFileProcessed(p)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return results, readBytes.Load(), nil
}

func (b *Builder) processFile(rel string, readBytes *atomic.Int64) fileResult {
	data, reason := readText(filepath.Join(b.root, filepath.FromSlash(rel)), b.opts.MaxFileBytes, b.opts.BinaryCheck)
	if reason != "" {
		return fileResult{reason: reason}
	}
	readBytes.Add(int64(len(data)))

	if b.opts.Mode == ModeFull {
		return fileResult{content: string(data), ok: true}
	}

	text, res := b.reducer.Reduce(rel, data)
	r := fileResult{content: text, ok: true, stage: res.Stage}
	if res.Stage != extraction.StagePassthrough && text == "" {
		r.ok = false
		r.reason = SkipEmpty
	}
	return r
}

// Rules returns the ignore rules a build would apply: the ignore file
// followed by the configured patterns.
func (b *Builder) Rules() (*ignore.RuleSet, error) {
	return b.loadRules()
}

func (b *Builder) loadRules() (*ignore.RuleSet, error) {
	if err := validateRoot(b.root); err != nil {
		return nil, err
	}
	rules := &ignore.RuleSet{}
	if b.opts.IgnoreFile != "" {
		loaded, err := ignore.Load(b.root, b.opts.IgnoreFile)
		if err != nil {
			return nil, fmt.Errorf("load ignore rules: %w", err)
		}
		rules = loaded
	}
	for _, p := range b.opts.Ignore {
		if err := rules.Add(p); err != nil {
			return nil, fmt.Errorf("load ignore rules: %w", err)
		}
	}
	return rules, nil
}

func (b *Builder) workers() int {
	if b.opts.Workers > 0 {
		return b.opts.Workers
	}
	return runtime.NumCPU()
}
