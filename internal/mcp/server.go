// ABOUTME: MCP server setup for the fitsync local cache and sync engine.
// ABOUTME: Wraps the MCP server with the engine, its session, and an authenticator.
package mcp

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/fitsync/internal/logging"
	"github.com/harperreed/fitsync/internal/remote"
	fsync "github.com/harperreed/fitsync/internal/sync"
)

// Authenticator exchanges credentials for a session token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*remote.Credentials, error)
}

// Server wraps the MCP server with sync engine access.
type Server struct {
	mcpServer *mcp.Server
	engine    *fsync.Engine
	auth      Authenticator
	logger    *log.Logger
}

// NewServer creates a new MCP server. auth may be nil, in which case the
// login tool reports an error.
func NewServer(engine *fsync.Engine, auth Authenticator, logger *log.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("mcp: sync engine is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fitsync",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		engine:    engine,
		auth:      auth,
		logger:    logging.Or(logger).With("component", "mcp"),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
