package mcp

import (
	"context"
	"fmt"

	"github.com/mvp-joe/repo-digest/internal/git"
	"github.com/mvp-joe/repo-digest/internal/parsers"
	"github.com/mvp-joe/repo-digest/internal/prompt"
	"github.com/mvp-joe/repo-digest/internal/snapshot"
)

// Snapshotter produces formatted snapshots on demand.
type Snapshotter interface {
	Snapshot(ctx context.Context, req *SnapshotRequest) (*SnapshotResult, error)
}

// ProjectSnapshotter builds snapshots of a single repository. The reducer
// is shared across calls so a caching reducer skips unchanged files.
type ProjectSnapshotter struct {
	root    string
	git     git.Operations
	reducer parsers.Reducer
	opts    snapshot.Options
}

// NewProjectSnapshotter creates a snapshotter for root. opts supplies the
// defaults that each request may override.
func NewProjectSnapshotter(root string, ops git.Operations, reducer parsers.Reducer, opts snapshot.Options) *ProjectSnapshotter {
	return &ProjectSnapshotter{
		root:    root,
		git:     ops,
		reducer: reducer,
		opts:    opts,
	}
}

// Snapshot builds, optionally applies a diff between base and head, and
// formats the result.
func (p *ProjectSnapshotter) Snapshot(ctx context.Context, req *SnapshotRequest) (*SnapshotResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	opts := p.opts
	if req.Mode != "" {
		opts.Mode = req.Mode
	}
	if req.MaxTotalBytes != nil {
		opts.MaxTotalBytes = *req.MaxTotalBytes
	}

	builder := snapshot.NewBuilder(p.root, p.git, p.reducer, opts, nil)
	snap, stats, err := builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}

	if req.BaseRef != "" {
		snap, err = builder.Update(ctx, req.BaseRef, req.HeadRef, snap)
		if err != nil {
			return nil, fmt.Errorf("update snapshot: %w", err)
		}
	}

	return &SnapshotResult{
		Text:  prompt.Format(snap),
		Stats: stats,
	}, nil
}
