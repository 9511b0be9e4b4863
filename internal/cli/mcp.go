package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mvp-joe/repo-digest/internal/git"
	"github.com/mvp-joe/repo-digest/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for codebase snapshots",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered coding
assistants request a snapshot of your codebase.

The MCP server:
- Builds snapshots on demand via the codebase_snapshot tool
- Reuses extraction results across calls when the cache is enabled
- Communicates via stdio (standard MCP transport)

Example:
  digest mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rootDir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	reducer, closeReducer, err := newReducer(cfg)
	if err != nil {
		return err
	}
	defer closeReducer()

	// stdout carries the protocol, so startup information goes to stderr.
	fmt.Fprintf(os.Stderr, "Digest MCP Server\n")
	fmt.Fprintf(os.Stderr, "Repository: %s\n", rootDir)
	fmt.Fprintf(os.Stderr, "Default Mode: %s\n", cfg.Snapshot.Mode)
	fmt.Fprintf(os.Stderr, "\n")

	snapshotter := mcp.NewProjectSnapshotter(rootDir, git.NewOperations(), reducer, cfg.SnapshotOptions())
	server, err := mcp.NewMCPServer(snapshotter, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Serve (blocks until shutdown)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
