package mcp

import (
	"errors"

	"github.com/mvp-joe/repo-digest/internal/snapshot"
)

// SnapshotRequest holds the arguments of one codebase_snapshot call.
type SnapshotRequest struct {
	Mode          snapshot.Mode // Empty keeps the configured mode
	BaseRef       string
	HeadRef       string
	MaxTotalBytes *int64 // Nil keeps the configured budget
	IncludeStats  bool
}

// Validate checks that refs come in pairs.
func (r *SnapshotRequest) Validate() error {
	if (r.BaseRef == "") != (r.HeadRef == "") {
		return errors.New("base_ref and head_ref must be given together")
	}
	return nil
}

// SnapshotResult is the formatted snapshot and the stats of the build that
// produced it.
type SnapshotResult struct {
	Text  string
	Stats *snapshot.Stats
}

// SnapshotStats is the JSON form of snapshot.Stats returned when a caller
// asks for build statistics.
type SnapshotStats struct {
	BuildID    string         `json:"build_id"`
	Mode       string         `json:"mode"`
	Files      int            `json:"files"`
	Contents   int            `json:"contents"`
	Extracted  int            `json:"extracted"`
	Fallbacks  int            `json:"fallbacks"`
	Failed     int            `json:"failed"`
	Skipped    map[string]int `json:"skipped,omitempty"`
	ReadBytes  int64          `json:"read_bytes"`
	Bytes      int64          `json:"bytes"`
	DurationMs int64          `json:"duration_ms"`
}

func newSnapshotStats(s *snapshot.Stats) *SnapshotStats {
	out := &SnapshotStats{
		BuildID:    s.BuildID,
		Mode:       string(s.Mode),
		Files:      s.Files,
		Contents:   s.Contents,
		Extracted:  s.Extracted,
		Fallbacks:  s.Fallbacks,
		Failed:     s.Failed,
		ReadBytes:  s.ReadBytes,
		Bytes:      s.Bytes,
		DurationMs: s.Duration.Milliseconds(),
	}
	if len(s.Skipped) > 0 {
		out.Skipped = make(map[string]int, len(s.Skipped))
		for reason, n := range s.Skipped {
			out.Skipped[string(reason)] = n
		}
	}
	return out
}
