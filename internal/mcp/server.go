// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mcp

// In this file: MCP server construction and transport management.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/legalspend/types"
)

const (
	serverName    = "legalspend-mcp"
	serverVersion = "1.0.0"
)

// Transport selects how the MCP server communicates with its client.
type Transport string

const (
	// TransportStdio uses stdin/stdout for communication (default, suitable
	// for local agent integrations such as Claude Desktop).
	TransportStdio Transport = "stdio"
	// TransportHTTP uses Streamable HTTP transport (suitable for remote
	// agents or when multiple concurrent clients are needed).
	TransportHTTP Transport = "http"
)

// Server wraps an MCP server and the spend aggregation manager.
type Server struct {
	mcp     *mcpsrv.MCPServer
	manager Manager
	logger  *slog.Logger
}

// New creates a new MCP server backed by the given manager.  The server is
// populated with all tools and resources but does not start listening until
// one of the Serve* methods is called.
func New(m Manager, lg *slog.Logger) *Server {
	if lg == nil {
		lg = slog.Default()
	}
	s := &Server{
		manager: m,
		logger:  lg,
	}

	mcpServer := mcpsrv.NewMCPServer(
		serverName,
		serverVersion,
		mcpsrv.WithInstructions(instructions()),
		mcpsrv.WithResourceCapabilities(false, false),
	)

	// Register all tools and resources.
	for _, t := range s.tools() {
		mcpServer.AddTool(t.Tool, t.Handler)
	}
	for _, r := range s.resources() {
		mcpServer.AddResource(r.resource, r.handler)
	}

	s.mcp = mcpServer
	return s
}

// instructions returns the server instructions that describe the service to
// the connecting agent.
func instructions() string {
	return `You are connected to a Legal Spend Intelligence MCP server.

It aggregates legal invoice data from the organisation's configured sources
(spend management APIs, ERP databases, file imports) and lets you:
- Get spend summaries for a period with vendor/department/practice-area breakdowns
- Analyze a vendor's performance and spend trend
- Compare actual department spend against budget
- Search transactions by vendor, matter or description
- List vendors and inspect data source health

All data is read-only. Dates use the YYYY-MM-DD format. Monetary amounts are
exact decimal strings in the record's own currency; mixed-currency result
sets are reported in the currency of the first record without conversion.`
}

// ServeStdio runs the MCP server over stdin/stdout until ctx is cancelled.
// This is the standard transport used by local agent integrations.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := mcpsrv.NewStdioServer(s.mcp)
	s.logger.InfoContext(ctx, "mcp server listening on stdio")
	if err := srv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("mcp stdio server error: %w", err)
	}
	return nil
}

// ServeHTTP runs the MCP server as a Streamable HTTP server on addr until
// ctx is cancelled.  addr should be a host:port string such as
// "127.0.0.1:8483".  Alongside the MCP endpoint, /healthz and /status report
// liveness and the live source status.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	streamSrv := mcpsrv.NewStreamableHTTPServer(s.mcp)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/status", s.handleStatus)
	r.Handle("/mcp", streamSrv)

	httpSrv := &http.Server{Addr: addr, Handler: r}

	s.logger.InfoContext(ctx, "mcp server listening on http", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("mcp http server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "mcp server shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("mcp http server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "server": serverName})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.manager.SourcesStatus(r.Context()))
}

// tools returns all MCP tools that this server exposes.
func (s *Server) tools() []mcpsrv.ServerTool {
	return []mcpsrv.ServerTool{
		s.toolSpendSummary(),
		s.toolVendorPerformance(),
		s.toolBudgetVsActual(),
		s.toolSearchTransactions(),
		s.toolListVendors(),
		s.toolListDataSources(),
	}
}

// resultText is a helper that wraps text in a successful CallToolResult.
func resultText(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}

// resultErr is a helper that wraps an error in a CallToolResult with
// IsError=true.  Tool call failures are data for the agent, not protocol
// errors.
func resultErr(err error) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(err.Error())},
		IsError: true,
	}
}

// resultJSON is a helper that serialises v to JSON and returns a
// CallToolResult.
func resultJSON(v any) (*mcplib.CallToolResult, error) {
	return mcplib.NewToolResultJSON(v)
}

// stringArg extracts a named string argument from a tool call request.
// Returns ("", false) if the argument is absent or not a string.
func stringArg(req mcplib.CallToolRequest, name string) (string, bool) {
	args := req.GetArguments()
	if args == nil {
		return "", false
	}
	v, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// floatArg extracts a named numeric argument.  The MCP protocol serialises
// numbers as float64.
func floatArg(req mcplib.CallToolRequest, name string) (float64, bool) {
	args := req.GetArguments()
	if args == nil {
		return 0, false
	}
	switch n := args[name].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// intArg extracts a named int argument with a default.
func intArg(req mcplib.CallToolRequest, name string, defaultVal int) int {
	if f, ok := floatArg(req, name); ok {
		return int(f)
	}
	return defaultVal
}

// boolArg extracts a named bool argument.
func boolArg(req mcplib.CallToolRequest, name string, defaultVal bool) bool {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	b, ok := args[name].(bool)
	if !ok {
		return defaultVal
	}
	return b
}

// dateArg parses a named YYYY-MM-DD date argument.
func dateArg(req mcplib.CallToolRequest, name string) (time.Time, error) {
	v, ok := stringArg(req, name)
	if !ok || v == "" {
		return time.Time{}, fmt.Errorf("%s is required (format YYYY-MM-DD)", name)
	}
	t, err := time.Parse(types.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format for %s: %q (want YYYY-MM-DD)", name, v)
	}
	return t, nil
}
