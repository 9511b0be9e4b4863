// Package ignore implements glob-based path exclusion rules for snapshot builds.
//
// Patterns use shell-glob semantics where "*" also matches "/". A pattern
// ending in "/" names a directory: any path that has the directory as a
// leading or inner component is excluded.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	dir     string // non-empty for directory patterns
}

// RuleSet is an ordered list of exclusion patterns.
type RuleSet struct {
	patterns []compiledPattern
	skipped  []string // Ignore-file lines that did not compile
}

// New compiles patterns into a RuleSet. Blank patterns are skipped.
func New(patterns []string) (*RuleSet, error) {
	rs := &RuleSet{}
	for _, p := range patterns {
		if err := rs.Add(p); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// Add compiles and appends a single pattern.
func (rs *RuleSet) Add(pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}

	cp := compiledPattern{pattern: pattern}
	if strings.HasSuffix(pattern, "/") {
		cp.dir = strings.Trim(pattern, "/")
	}

	// No separators: "*" must span "/" like fnmatch.
	g, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
	}
	cp.glob = g
	rs.patterns = append(rs.patterns, cp)
	return nil
}

// Load reads patterns from name inside root, one per line. Blank lines and
// lines starting with "#" are skipped. A missing file yields an empty
// RuleSet.
func Load(root, name string) (*RuleSet, error) {
	f, err := os.Open(filepath.Join(root, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &RuleSet{}, nil
		}
		return nil, fmt.Errorf("open ignore file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads patterns from r in ignore-file format. Lines that are not
// valid globs are skipped and reported by Skipped.
func Parse(r io.Reader) (*RuleSet, error) {
	rs := &RuleSet{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := rs.Add(line); err != nil {
			rs.skipped = append(rs.skipped, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ignore file: %w", err)
	}
	return rs, nil
}

// Match reports whether the slash-separated relative path is excluded.
func (rs *RuleSet) Match(path string) bool {
	if rs == nil {
		return false
	}
	path = filepath.ToSlash(path)
	for _, cp := range rs.patterns {
		if cp.glob.Match(path) {
			return true
		}
		if cp.dir != "" {
			if strings.HasPrefix(path, cp.dir+"/") || strings.Contains(path, "/"+cp.dir+"/") {
				return true
			}
		}
	}
	return false
}

// Filter returns the paths not excluded by the RuleSet, preserving order.
func (rs *RuleSet) Filter(paths []string) []string {
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if !rs.Match(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

// Patterns returns the source patterns in order.
func (rs *RuleSet) Patterns() []string {
	if rs == nil {
		return nil
	}
	out := make([]string, len(rs.patterns))
	for i, cp := range rs.patterns {
		out[i] = cp.pattern
	}
	return out
}

// Skipped returns the ignore-file lines Parse could not compile.
func (rs *RuleSet) Skipped() []string {
	if rs == nil {
		return nil
	}
	return append([]string(nil), rs.skipped...)
}

// Len returns the number of patterns.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.patterns)
}
