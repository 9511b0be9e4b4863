package mcp

import (
	"fmt"
	"strings"

	mcputils "github.com/mvp-joe/repo-digest/internal/mcp-utils"
	"github.com/mvp-joe/repo-digest/internal/snapshot"
)

var modeNames = []string{
	string(snapshot.ModeFull),
	string(snapshot.ModeSignatures),
	string(snapshot.ModePaths),
}

// snapshotArgs mirrors the codebase_snapshot input schema.
type snapshotArgs struct {
	Mode          string `json:"mode"`
	BaseRef       string `json:"base_ref"`
	HeadRef       string `json:"head_ref"`
	MaxTotalBytes *int64 `json:"max_total_bytes"`
	IncludeStats  bool   `json:"include_stats"`
}

// parseSnapshotRequest binds and validates tool arguments.
func parseSnapshotRequest(request mcputils.ArgumentGetter) (*SnapshotRequest, error) {
	var args snapshotArgs
	if err := mcputils.CoerceBindArguments(request, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	mode := snapshot.Mode(args.Mode)
	if mode != "" && !mode.Valid() {
		return nil, fmt.Errorf("mode must be one of %s", strings.Join(modeNames, ", "))
	}
	if args.MaxTotalBytes != nil && *args.MaxTotalBytes < 0 {
		return nil, fmt.Errorf("max_total_bytes must be a non-negative integer")
	}

	req := &SnapshotRequest{
		Mode:          mode,
		BaseRef:       args.BaseRef,
		HeadRef:       args.HeadRef,
		MaxTotalBytes: args.MaxTotalBytes,
		IncludeStats:  args.IncludeStats,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
