package snapshot

import (
	"errors"
	"time"
)

// ErrInvalidRoot is returned when the repository root is missing or is not a directory.
var ErrInvalidRoot = errors.New("invalid repository root")

// Mode selects what a snapshot stores for each eligible file.
type Mode string

const (
	// ModeFull stores file text verbatim.
	ModeFull Mode = "full"
	// ModeSignatures stores the signature-only reduction of each file.
	ModeSignatures Mode = "signatures"
	// ModePaths stores paths only.
	ModePaths Mode = "paths"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeFull, ModeSignatures, ModePaths:
		return true
	}
	return false
}

// BinaryCheck selects the heuristic used to reject non-text files.
type BinaryCheck string

const (
	// BinaryCheckNUL rejects files with a NUL byte in the sniff window.
	BinaryCheckNUL BinaryCheck = "nul"
	// BinaryCheckUTF8 rejects files that are not valid UTF-8.
	BinaryCheckUTF8 BinaryCheck = "utf8"
	// BinaryCheckBoth applies both checks.
	BinaryCheckBoth BinaryCheck = "both"
)

// Valid reports whether c is a known heuristic.
func (c BinaryCheck) Valid() bool {
	switch c {
	case BinaryCheckNUL, BinaryCheckUTF8, BinaryCheckBoth:
		return true
	}
	return false
}

// Options controls one snapshot build.
type Options struct {
	Mode          Mode
	MaxFileBytes  int64    // Per-file ceiling; larger files keep their path but no content
	MaxTotalBytes int64    // Budget for all content, 0 for unlimited
	Workers       int      // Concurrent file reads, 0 for runtime.NumCPU()
	IgnoreFile    string   // Ignore file name relative to the root, "" to skip
	Ignore        []string // Extra ignore patterns
	BinaryCheck   BinaryCheck
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Mode:         ModeSignatures,
		MaxFileBytes: 1 << 20,
		IgnoreFile:   ".digestignore",
		BinaryCheck:  BinaryCheckBoth,
	}
}

// Snapshot is the state of a repository at one point in time: every known
// path in canonical order plus the content stored for each. A path missing
// from Contents was skipped on purpose.
type Snapshot struct {
	Paths    []string
	Contents map[string]string
}

// New returns an empty snapshot.
func New() *Snapshot {
	return &Snapshot{Contents: make(map[string]string)}
}

// Content returns the stored content for path.
func (s *Snapshot) Content(path string) (string, bool) {
	c, ok := s.Contents[path]
	return c, ok
}

// Has reports whether path is listed in the snapshot.
func (s *Snapshot) Has(path string) bool {
	for _, p := range s.Paths {
		if p == path {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Paths:    append([]string(nil), s.Paths...),
		Contents: make(map[string]string, len(s.Contents)),
	}
	for k, v := range s.Contents {
		out.Contents[k] = v
	}
	return out
}

// SkipReason explains why a listed path has no content.
type SkipReason string

const (
	SkipUnreadable SkipReason = "unreadable"
	SkipOversized  SkipReason = "oversized"
	SkipBinary     SkipReason = "binary"
	SkipEmpty      SkipReason = "empty"  // Extraction found no declarations
	SkipBudget     SkipReason = "budget" // MaxTotalBytes reached
)

// Stats describes one build. It is diagnostic only and never part of the
// formatted output.
type Stats struct {
	BuildID   string
	Mode      Mode
	Files     int // Paths in the snapshot
	Contents  int // Paths with content
	Extracted int // Files reduced by a language extractor
	Fallbacks int // Files reduced by the fallback stage
	Failed    int // Files where both stages failed
	Skipped   map[SkipReason]int
	ReadBytes int64 // Bytes read from disk
	Bytes     int64 // Bytes of stored content
	Duration  time.Duration
}

func newStats(id string, mode Mode) *Stats {
	return &Stats{
		BuildID: id,
		Mode:    mode,
		Skipped: make(map[SkipReason]int),
	}
}

// ProgressReporter receives build progress. OnFileProcessed may be called
// from several goroutines at once.
type ProgressReporter interface {
	OnSelectComplete(totalFiles int)
	OnFileProcessed(path string)
	OnComplete(stats *Stats)
}

// NoOpProgressReporter discards progress.
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnSelectComplete(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileProcessed(path string)     {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)         {}
