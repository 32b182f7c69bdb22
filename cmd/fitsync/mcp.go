// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server over the same store and session as the CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/fitsync/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and uses the same local store,
saved session, and API server as the CLI.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "fitsync": {
        "command": "fitsync",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  login, logout, session_status   Manage the API session
  pull                            Refresh the cache from the API
  list                            List cached entities of one kind
  add_note, add_log               Write a note or an exercise log
  delete                          Delete a routine, note, or log
  generate_routines               Build a week of routines from a body metric
  compute_metric                  Compute the body metric from weight and height

AVAILABLE RESOURCES:

  fitsync://routines      Routines with their exercises
  fitsync://logs/recent   Latest exercise logs
  fitsync://summary       Session state and cached counts`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var auth mcp.Authenticator
		if api != nil {
			auth = api
		}

		server, err := mcp.NewServer(engine, auth, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case <-sigChan:
				cancel()
			case <-ctx.Done():
			}
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
