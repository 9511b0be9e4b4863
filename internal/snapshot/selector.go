package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/mvp-joe/repo-digest/internal/git"
	"github.com/mvp-joe/repo-digest/internal/ignore"
)

// sniffLen is how much of a file the NUL check inspects, the same window git uses.
const sniffLen = 8000

// Selector enumerates the eligible files of a repository.
type Selector struct {
	root  string
	git   git.Operations
	rules *ignore.RuleSet
}

// NewSelector creates a selector for root. A nil rule set ignores nothing.
func NewSelector(root string, ops git.Operations, rules *ignore.RuleSet) *Selector {
	return &Selector{root: root, git: ops, rules: rules}
}

// Select returns tracked files followed by untracked, non-ignored files,
// without duplicates, filtered by the rule set. Directories are dropped.
func (s *Selector) Select(ctx context.Context) ([]string, error) {
	if err := validateRoot(s.root); err != nil {
		return nil, err
	}

	tracked, err := s.git.ListTrackedFiles(ctx, s.root)
	if err != nil {
		return nil, fmt.Errorf("list tracked files: %w", err)
	}
	untracked, err := s.git.ListUntrackedFiles(ctx, s.root)
	if err != nil {
		return nil, fmt.Errorf("list untracked files: %w", err)
	}

	seen := make(map[string]struct{}, len(tracked)+len(untracked))
	var paths []string
	for _, group := range [][]string{tracked, untracked} {
		for _, p := range group {
			p = filepath.ToSlash(p)
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			if s.rules.Match(p) || s.isDir(p) {
				continue
			}
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func (s *Selector) isDir(rel string) bool {
	info, err := os.Lstat(filepath.Join(s.root, filepath.FromSlash(rel)))
	return err == nil && info.IsDir()
}

func validateRoot(root string) error {
	if root == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidRoot)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}
	return nil
}

// readText loads a file under the size ceiling and text checks. A non-empty
// reason means the file has no usable content.
func readText(path string, maxBytes int64, check BinaryCheck) ([]byte, SkipReason) {
	f, err := os.Open(path)
	if err != nil {
		return nil, SkipUnreadable
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return nil, SkipUnreadable
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, SkipOversized
	}

	// The file may grow between Stat and Read.
	r := io.Reader(f)
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, SkipUnreadable
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, SkipOversized
	}
	if isBinary(data, check) {
		return nil, SkipBinary
	}
	return data, ""
}

func isBinary(data []byte, check BinaryCheck) bool {
	switch check {
	case BinaryCheckNUL:
		return hasNUL(data)
	case BinaryCheckUTF8:
		return !utf8.Valid(data)
	default:
		return hasNUL(data) || !utf8.Valid(data)
	}
}

func hasNUL(data []byte) bool {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
