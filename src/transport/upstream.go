// Package transport serves the content gate over MCP, on stdio or
// streamable HTTP.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Easy-Infra-Ltd/easy-content-gate/src/config"
)

const serverName = "easy-content-gate"

// Upstream wraps the MCP server that callers talk to. Tools are registered
// on the underlying Server before calling Run.
type Upstream struct {
	Server  *mcp.Server
	cfg     config.ServerConfig
	metrics http.Handler
	logger  *slog.Logger

	// addrCh receives the bound address once the HTTP listener is up.
	addrCh chan net.Addr
}

// NewUpstream creates an MCP server for the given transport. metrics, when
// non-nil, is mounted on the HTTP listener at the configured metrics path.
func NewUpstream(cfg config.ServerConfig, metrics http.Handler, logger *slog.Logger) *Upstream {
	srv := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: Version,
		},
		&mcp.ServerOptions{Logger: logger},
	)
	return &Upstream{
		Server:  srv,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.With("area", "upstream"),
		addrCh:  make(chan net.Addr, 1),
	}
}

// Addr blocks until the HTTP listener is bound or ctx is done.
func (u *Upstream) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case a := <-u.addrCh:
		return a, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run starts the server on the configured transport and blocks until ctx
// is cancelled or the transport closes.
func (u *Upstream) Run(ctx context.Context) error {
	switch u.cfg.Transport {
	case config.TransportStdio:
		return u.runStdio(ctx)
	case config.TransportHTTP:
		return u.runHTTP(ctx)
	default:
		return fmt.Errorf("unsupported server transport: %s", u.cfg.Transport)
	}
}

func (u *Upstream) runStdio(ctx context.Context) error {
	u.logger.Info("starting stdio transport")
	return u.Server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP routes: the MCP endpoint and, if configured,
// the metrics endpoint.
func (u *Upstream) Handler() http.Handler {
	mcpHandler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return u.Server },
		&mcp.StreamableHTTPOptions{Logger: u.logger},
	)

	mux := http.NewServeMux()
	mux.Handle(u.cfg.HTTP.Path, mcpHandler)
	if u.metrics != nil {
		mux.Handle(u.cfg.HTTP.MetricsPath, u.metrics)
	}
	return mux
}

func (u *Upstream) runHTTP(ctx context.Context) error {
	ln, err := net.Listen("tcp", u.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", u.cfg.HTTP.Addr, err)
	}
	u.logger.Info("starting HTTP transport",
		"addr", ln.Addr(),
		"path", u.cfg.HTTP.Path,
		"metrics", u.cfg.HTTP.MetricsPath,
	)
	u.addrCh <- ln.Addr()

	srv := &http.Server{
		Handler:           u.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		u.logger.Info("shutting down HTTP transport")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
