package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotRepository is returned when the target directory is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// CommandError describes a git invocation that exited unsuccessfully.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("Git command failed: %s", msg)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Operations defines the version-control queries the snapshot pipeline needs.
// This allows mocking git commands in tests.
type Operations interface {
	// ListTrackedFiles returns repository-relative paths of tracked files.
	ListTrackedFiles(ctx context.Context, root string) ([]string, error)

	// ListUntrackedFiles returns untracked paths that are not excluded by
	// the repository's own ignore configuration.
	ListUntrackedFiles(ctx context.Context, root string) ([]string, error)

	// Diff returns the unified diff between two refs.
	// An empty head diffs base against the working tree.
	Diff(ctx context.Context, root, base, head string) (string, error)

	// IsRepository reports whether root is inside a git work tree.
	IsRepository(ctx context.Context, root string) bool
}

// gitOps is the real implementation using exec.CommandContext.
type gitOps struct {
	binary string
}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{binary: "git"}
}

func (g *gitOps) ListTrackedFiles(ctx context.Context, root string) ([]string, error) {
	out, err := g.run(ctx, root, "ls-files", "-z")
	if err != nil {
		return nil, err
	}
	return splitNUL(out), nil
}

func (g *gitOps) ListUntrackedFiles(ctx context.Context, root string) ([]string, error) {
	out, err := g.run(ctx, root, "ls-files", "-z", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}
	return splitNUL(out), nil
}

func (g *gitOps) Diff(ctx context.Context, root, base, head string) (string, error) {
	// Non-ASCII names stay raw in headers; only control characters, quotes
	// and backslashes are still C-quoted.
	args := []string{"-c", "core.quotePath=false", "diff", "--no-color", "--no-ext-diff"}
	switch {
	case base != "" && head != "":
		args = append(args, base+".."+head)
	case base != "":
		args = append(args, base)
	}
	return g.run(ctx, root, args...)
}

func (g *gitOps) IsRepository(ctx context.Context, root string) bool {
	out, err := g.run(ctx, root, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

func (g *gitOps) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if strings.Contains(stderr.String(), "not a git repository") {
			return "", fmt.Errorf("%s: %w", dir, ErrNotRepository)
		}
		cmdErr := &CommandError{
			Args:     append([]string{g.binary}, args...),
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return "", cmdErr
	}
	return stdout.String(), nil
}

// splitNUL splits -z output into paths. Paths are returned unmodified, so
// names with spaces, newlines or non-ASCII bytes survive.
func splitNUL(out string) []string {
	var paths []string
	for _, p := range strings.Split(out, "\x00") {
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}
