package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// checkToolArguments returns an error result unless the request carries
// an arguments object. A call without arguments is valid.
func checkToolArguments(request mcp.CallToolRequest) *mcp.CallToolResult {
	if request.Params.Arguments == nil {
		return nil
	}
	if _, ok := request.Params.Arguments.(map[string]interface{}); !ok {
		return mcp.NewToolResultError("invalid arguments format")
	}
	return nil
}

// withStats returns the snapshot text followed by a JSON stats block.
func withStats(result *SnapshotResult) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(newSnapshotStats(result.Stats))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stats: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(result.Text),
			mcp.NewTextContent(string(jsonData)),
		},
	}, nil
}
