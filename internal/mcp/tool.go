package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolName is the name the snapshot tool is registered under.
const ToolName = "codebase_snapshot"

// AddCodebaseSnapshotTool registers the codebase_snapshot tool with an MCP server.
func AddCodebaseSnapshotTool(s *server.MCPServer, snapshotter Snapshotter) {
	tool := mcp.NewTool(
		ToolName,
		mcp.WithDescription("Return a text snapshot of the repository: a directory tree of every tracked and untracked file followed by file contents. In 'signatures' mode source files are reduced to their public declarations. With base_ref and head_ref, files changed between the two refs are included in full."),
		mcp.WithString("mode",
			mcp.Enum(modeNames...),
			mcp.Description("Content mode: 'full' (verbatim text), 'signatures' (public API only), 'paths' (tree only). Defaults to the project configuration.")),
		mcp.WithString("base_ref",
			mcp.Description("Base git ref for diff-based updates (e.g., 'main'). Requires head_ref.")),
		mcp.WithString("head_ref",
			mcp.Description("Head git ref for diff-based updates (e.g., 'HEAD'). Requires base_ref.")),
		mcp.WithNumber("max_total_bytes",
			mcp.Description("Cap on total content bytes, 0 for no cap. Defaults to the project configuration.")),
		mcp.WithBoolean("include_stats",
			mcp.Description("Append build statistics as a second JSON content block (default: false)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createCodebaseSnapshotHandler(snapshotter))
}

// createCodebaseSnapshotHandler creates the handler function for the codebase_snapshot tool.
func createCodebaseSnapshotHandler(snapshotter Snapshotter) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if errResult := checkToolArguments(request); errResult != nil {
			return errResult, nil
		}

		req, err := parseSnapshotRequest(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := snapshotter.Snapshot(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("snapshot failed: %w", err)
		}

		if !req.IncludeStats || result.Stats == nil {
			return mcp.NewToolResultText(result.Text), nil
		}
		return withStats(result)
	}
}
