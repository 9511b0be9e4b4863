package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/repo-digest/internal/git"
	"github.com/mvp-joe/repo-digest/internal/parsers"
	"github.com/mvp-joe/repo-digest/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGo = `package sample

// Run starts it.
func Run() error {
	return nil
}

func helper() {}
`

func setupProject(t *testing.T) (string, *git.MockOperations) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "run.go"), []byte(sampleGo), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello\n"), 0644))

	ops := git.NewMockOperations()
	ops.Tracked = []string{"run.go", "notes.txt"}
	return root, ops
}

func TestProjectSnapshotter_UsesConfiguredMode(t *testing.T) {
	t.Parallel()

	root, ops := setupProject(t)
	p := NewProjectSnapshotter(root, ops, parsers.NewRegistry(), snapshot.DefaultOptions())

	result, err := p.Snapshot(context.Background(), &SnapshotRequest{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Text, "<file_tree>\n"))
	assert.Contains(t, result.Text, "--- File: run.go ---")
	assert.Contains(t, result.Text, "func Run() error")
	assert.NotContains(t, result.Text, "helper")
	assert.NotContains(t, result.Text, "return nil")
	require.NotNil(t, result.Stats)
	assert.Equal(t, 2, result.Stats.Files)
}

func TestProjectSnapshotter_ModeOverride(t *testing.T) {
	t.Parallel()

	root, ops := setupProject(t)
	p := NewProjectSnapshotter(root, ops, parsers.NewRegistry(), snapshot.DefaultOptions())

	full, err := p.Snapshot(context.Background(), &SnapshotRequest{Mode: snapshot.ModeFull})
	require.NoError(t, err)
	assert.Contains(t, full.Text, "return nil")

	paths, err := p.Snapshot(context.Background(), &SnapshotRequest{Mode: snapshot.ModePaths})
	require.NoError(t, err)
	assert.Contains(t, paths.Text, "run.go")
	assert.NotContains(t, paths.Text, "--- File:")
}

func TestProjectSnapshotter_BudgetOverride(t *testing.T) {
	t.Parallel()

	root, ops := setupProject(t)
	p := NewProjectSnapshotter(root, ops, parsers.NewRegistry(), snapshot.DefaultOptions())

	budget := int64(1)
	result, err := p.Snapshot(context.Background(), &SnapshotRequest{Mode: snapshot.ModeFull, MaxTotalBytes: &budget})
	require.NoError(t, err)
	assert.NotContains(t, result.Text, "--- File:")
	assert.Equal(t, 2, result.Stats.Skipped[snapshot.SkipBudget])
}

func TestProjectSnapshotter_DiffUpdate(t *testing.T) {
	t.Parallel()

	root, ops := setupProject(t)
	ops.DiffText = "diff --git a/run.go b/run.go\n--- a/run.go\n+++ b/run.go\n@@ -1 +1 @@\n-x\n+y\n"
	p := NewProjectSnapshotter(root, ops, parsers.NewRegistry(), snapshot.DefaultOptions())

	result, err := p.Snapshot(context.Background(), &SnapshotRequest{BaseRef: "main", HeadRef: "HEAD"})
	require.NoError(t, err)

	// Changed files carry their full text.
	assert.Contains(t, result.Text, "func helper() {}")
	assert.Contains(t, ops.Calls(), "diff main..HEAD")
}

func TestProjectSnapshotter_Errors(t *testing.T) {
	t.Parallel()

	root, ops := setupProject(t)
	p := NewProjectSnapshotter(root, ops, parsers.NewRegistry(), snapshot.DefaultOptions())

	_, err := p.Snapshot(context.Background(), &SnapshotRequest{BaseRef: "main"})
	assert.Error(t, err)

	ops.DiffError = errors.New("bad revision")
	_, err = p.Snapshot(context.Background(), &SnapshotRequest{BaseRef: "main", HeadRef: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update snapshot")

	missing := NewProjectSnapshotter(filepath.Join(root, "absent"), ops, nil, snapshot.DefaultOptions())
	_, err = missing.Snapshot(context.Background(), &SnapshotRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, snapshot.ErrInvalidRoot)
}
