package snapshot

import (
	"regexp"
	"strconv"
	"strings"
)

var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,(\d+))? \+\d+(?:,(\d+))? @@`)

// DiffFileSet is the ordered set of paths named by the per-file headers of a
// unified diff.
type DiffFileSet struct {
	paths []string
	seen  map[string]struct{}
}

// ParseDiffFileSet collects one path per file entry of a unified diff. The
// "+++" header names the path; for a deleted file the "---" header does.
// Entries without those headers (binary or mode-only changes) fall back to
// the "diff --git" line. Hunk bodies are skipped by line count, so added
// lines that look like headers never count. "/dev/null" is never a path.
func ParseDiffFileSet(diff string) DiffFileSet {
	set := DiffFileSet{seen: make(map[string]struct{})}
	var (
		oldLeft, newLeft int
		pending          string // Path from "diff --git", used if no "+++" follows
		removed          string // Path from "---"
	)

	for _, line := range strings.Split(diff, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if oldLeft > 0 || newLeft > 0 {
			switch {
			case strings.HasPrefix(line, "\\"):
			case strings.HasPrefix(line, "-"):
				oldLeft--
			case strings.HasPrefix(line, "+"):
				newLeft--
			default:
				oldLeft--
				newLeft--
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "diff --git "):
			set.add(pending)
			pending = gitHeaderPath(strings.TrimPrefix(line, "diff --git "))
			removed = ""
		case strings.HasPrefix(line, "--- "):
			removed = headerPath(strings.TrimPrefix(line, "--- "), "a/")
		case strings.HasPrefix(line, "+++ "):
			path := headerPath(strings.TrimPrefix(line, "+++ "), "b/")
			if path == "" {
				path = removed
			}
			if path == "" {
				path = pending
			}
			set.add(path)
			pending, removed = "", ""
		case strings.HasPrefix(line, "@@"):
			if m := hunkHeader.FindStringSubmatch(line); m != nil {
				oldLeft, newLeft = hunkCount(m[1]), hunkCount(m[2])
			}
		}
	}
	set.add(pending)
	return set
}

// gitHeaderPath returns the new-side path of a "diff --git a/X b/Y" line.
// Unquoted names may contain " b/", so the unrenamed case is split in the
// middle where both halves agree.
func gitHeaderPath(rest string) string {
	if strings.HasPrefix(rest, `"`) || strings.HasSuffix(rest, `"`) {
		if i := strings.LastIndex(rest, ` "b/`); i >= 0 {
			return unquotePath(rest[i+1:], "b/")
		}
		if i := strings.LastIndex(rest, " b/"); i >= 0 {
			return rest[i+3:]
		}
		return ""
	}
	if n := len(rest) - 5; n > 0 && n%2 == 0 {
		half := n / 2
		if strings.HasPrefix(rest, "a/") && rest[2+half:5+half] == " b/" && rest[2:2+half] == rest[5+half:] {
			return rest[5+half:]
		}
	}
	if i := strings.LastIndex(rest, " b/"); i >= 0 {
		return rest[i+3:]
	}
	return ""
}

// headerPath strips the side prefix, C-quoting and any trailing tab-separated
// timestamp from a "---" or "+++" header.
func headerPath(s, prefix string) string {
	if strings.HasPrefix(s, `"`) {
		return unquotePath(s, prefix)
	}
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	if s == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(s, prefix)
}

// unquotePath decodes a git C-quoted name such as "b/caf\303\251.py".
// Anything after the closing quote is dropped.
func unquotePath(s, prefix string) string {
	end := closingQuote(s)
	if end < 0 {
		return ""
	}
	name, err := strconv.Unquote(s[:end+1])
	if err != nil {
		name = s[1:end]
	}
	if name == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(name, prefix)
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

func hunkCount(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func (d *DiffFileSet) add(path string) {
	if path == "" || path == "/dev/null" {
		return
	}
	if _, ok := d.seen[path]; ok {
		return
	}
	d.seen[path] = struct{}{}
	d.paths = append(d.paths, path)
}

// Paths returns the changed paths in header order.
func (d DiffFileSet) Paths() []string {
	return append([]string(nil), d.paths...)
}

// Contains reports whether path changed.
func (d DiffFileSet) Contains(path string) bool {
	_, ok := d.seen[path]
	return ok
}

// Len returns the number of changed paths.
func (d DiffFileSet) Len() int {
	return len(d.paths)
}
