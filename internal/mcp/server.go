// Package mcp wires the market service into an MCP server exposing the
// stock-data tools over stdio or streamable HTTP transport.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hsliu/cnstock/internal/cache"
	"github.com/hsliu/cnstock/internal/clients/eastmoney"
	"github.com/hsliu/cnstock/internal/clients/sina"
	"github.com/hsliu/cnstock/internal/clients/xueqiu"
	"github.com/hsliu/cnstock/internal/common"
	"github.com/hsliu/cnstock/internal/market"
)

const serverName = "cnstock-mcp"

// Server wraps the MCP server with the market service behind it.
type Server struct {
	mcp *server.MCPServer
	svc *market.Service
	log *common.Logger
}

// NewServer creates and configures the MCP server with all tools
// registered, building the upstream clients from configuration.
func NewServer(cfg *common.Config, log *common.Logger) (*Server, error) {
	emOpts := []eastmoney.ClientOption{
		eastmoney.WithLogger(log),
		eastmoney.WithTimeout(cfg.Clients.Eastmoney.GetTimeout()),
	}
	if cfg.Clients.Eastmoney.RateLimit > 0 {
		emOpts = append(emOpts, eastmoney.WithRateLimit(cfg.Clients.Eastmoney.RateLimit))
	}
	if cfg.Clients.Eastmoney.BaseURL != "" {
		emOpts = append(emOpts, eastmoney.WithBaseURL(cfg.Clients.Eastmoney.BaseURL))
	}
	em := eastmoney.NewClient(emOpts...)

	snOpts := []sina.ClientOption{
		sina.WithLogger(log),
		sina.WithTimeout(cfg.Clients.Sina.GetTimeout()),
	}
	if cfg.Clients.Sina.RateLimit > 0 {
		snOpts = append(snOpts, sina.WithRateLimit(cfg.Clients.Sina.RateLimit))
	}
	if cfg.Clients.Sina.BaseURL != "" {
		snOpts = append(snOpts, sina.WithBaseURL(cfg.Clients.Sina.BaseURL))
	}
	sn := sina.NewClient(snOpts...)

	xqOpts := []xueqiu.ClientOption{
		xueqiu.WithLogger(log),
		xueqiu.WithTimeout(cfg.Clients.Xueqiu.GetTimeout()),
	}
	if cfg.Clients.Xueqiu.RateLimit > 0 {
		xqOpts = append(xqOpts, xueqiu.WithRateLimit(cfg.Clients.Xueqiu.RateLimit))
	}
	if cfg.Clients.Xueqiu.BaseURL != "" {
		xqOpts = append(xqOpts, xueqiu.WithBaseURL(cfg.Clients.Xueqiu.BaseURL))
	}
	xq := xueqiu.NewClient(xqOpts...)

	sources := market.Sources{Eastmoney: em, Sina: sn, Xueqiu: xq}

	var store market.TableCache
	if cfg.Cache.Enabled {
		store = cache.New(cfg.Cache, log)
	}

	return NewServerWithService(market.NewService(sources, store, log), log), nil
}

// NewServerWithService creates the MCP server over an existing service.
// Used by tests to inject stub sources.
func NewServerWithService(svc *market.Service, log *common.Logger) *Server {
	s := &Server{svc: svc, log: log}
	s.mcp = server.NewMCPServer(serverName, common.GetVersion(),
		server.WithToolHandlerMiddleware(s.loggingMiddleware),
	)
	s.registerMarketTools()
	s.registerCompanyTools()
	s.registerIndexTools()
	s.registerMetaTools()
	return s
}

// loggingMiddleware tags every tool call with an invocation id and logs
// its duration.
func (s *Server) loggingMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := uuid.NewString()
		start := time.Now()
		s.log.Debug().Str("invocation", id).Str("tool", request.Params.Name).Msg("Tool call started")

		result, err := next(ctx, request)

		event := s.log.Info()
		if err != nil {
			event = s.log.Error().Err(err)
		}
		event.Str("invocation", id).Str("tool", request.Params.Name).
			Dur("duration", time.Since(start)).Msg("Tool call finished")
		return result, err
	}
}

// ServeStdio starts the MCP server on stdio transport and blocks until
// the client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.mcp)
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("failed to serve MCP: %w", err)
	}
	return nil
}

// ServeHTTP starts the MCP server on streamable HTTP transport at
// /mcp, with health and version endpoints alongside, and blocks until
// ctx is cancelled.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpMCP := server.NewStreamableHTTPServer(s.mcp,
		server.WithStateLess(true),
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", httpMCP)
	mux.HandleFunc("/api/health", healthHandler)
	mux.HandleFunc("/api/version", versionHandler)

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	s.log.Info().Msg("HTTP server stopped")
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"name":    serverName,
		"version": common.GetVersion(),
		"commit":  common.GetGitCommit(),
	})
}
