package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/prcache/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// instructions is sent to clients during initialisation.
const instructions = `prcache keeps a local cache of GitHub pull requests, saved work-item searches and workflow runs.
Read cached data through the prcache:// resources. Call refresh only when refresh_status shows a scope is stale:
only one refresh runs at a time and requests made inside the cooldown are skipped.`

// Server exposes the refresh coordinator and the cache over MCP.
type Server struct {
	ports  *Ports
	server *mcp.Server
	log    *logger.Logger

	// refreshMu serializes refresh tool calls.
	refreshMu sync.Mutex
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "prcache", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
		log: logger.Default().Named("mcp"),
	}

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s, nil
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Debug("serving over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves streamable HTTP on addr until ctx is cancelled.
// In-flight requests get shutdownTimeout to finish.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("shutting down MCP HTTP server: %v", err)
		}
	}()

	s.log.Debug("serving streamable HTTP on %s", addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
