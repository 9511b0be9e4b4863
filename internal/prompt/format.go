// Package prompt renders snapshots as delimited text for generation
// requests. The markers are matched literally by consumers and must not
// change.
package prompt

import (
	"sort"
	"strings"

	"github.com/mvp-joe/repo-digest/internal/snapshot"
)

const (
	TreeOpen      = "<codebase_tree>"
	TreeClose     = "</codebase_tree>"
	ContentsOpen  = "<file_contents>"
	ContentsClose = "</file_contents>"
)

// FileHeader returns the marker line that opens a file section.
func FileHeader(path string) string {
	return "--- File: " + path + " ---"
}

// Format renders the tree of every snapshot path, then one section per path
// with content, both in lexicographic path order.
func Format(snap *snapshot.Snapshot) string {
	paths := canonicalPaths(snap)

	var sb strings.Builder
	sb.WriteString(TreeOpen)
	sb.WriteString("\n")
	sb.WriteString(RenderTree(paths))
	sb.WriteString(TreeClose)
	sb.WriteString("\n\n")

	sb.WriteString(ContentsOpen)
	sb.WriteString("\n")
	first := true
	for _, p := range paths {
		content, ok := snap.Contents[p]
		if !ok {
			continue
		}
		if !first {
			sb.WriteString("\n")
		}
		first = false
		sb.WriteString(FileHeader(p))
		sb.WriteString("\n")
		sb.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(ContentsClose)
	return sb.String()
}

// canonicalPaths returns the snapshot's paths sorted without duplicates.
func canonicalPaths(snap *snapshot.Snapshot) []string {
	if snap == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(snap.Paths))
	out := make([]string, 0, len(snap.Paths))
	for _, p := range snap.Paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
