package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Update returns a copy of snap in which every path changed between base and
// head holds its full working-tree text. Changed paths that cannot be read
// as text keep their previous state. Paths new to the snapshot are appended
// in diff order unless they are ignored or absent from the working tree.
func (b *Builder) Update(ctx context.Context, base, head string, snap *Snapshot) (*Snapshot, error) {
	if snap == nil {
		snap = New()
	}
	rules, err := b.loadRules()
	if err != nil {
		return nil, err
	}

	text, err := b.git.Diff(ctx, b.root, base, head)
	if err != nil {
		return nil, fmt.Errorf("fetch diff: %w", err)
	}
	changed := ParseDiffFileSet(text)

	out := snap.Clone()
	known := make(map[string]struct{}, len(out.Paths))
	for _, p := range out.Paths {
		known[p] = struct{}{}
	}

	for _, p := range changed.Paths() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		abs := filepath.Join(b.root, filepath.FromSlash(p))

		if _, ok := known[p]; !ok {
			if rules.Match(p) {
				continue
			}
			info, err := os.Lstat(abs)
			if err != nil || info.IsDir() {
				continue
			}
			out.Paths = append(out.Paths, p)
			known[p] = struct{}{}
		}

		data, reason := readText(abs, b.opts.MaxFileBytes, b.opts.BinaryCheck)
		if reason != "" {
			continue
		}
		out.Contents[p] = string(data)
	}
	return out, nil
}
