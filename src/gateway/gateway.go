package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/Easy-Infra-Ltd/easy-content-gate/src/config"
	"github.com/Easy-Infra-Ltd/easy-content-gate/src/metrics"
	"github.com/Easy-Infra-Ltd/easy-content-gate/src/transport"
)

// Gateway is the top-level orchestrator. It wires config, the content gate,
// metrics, the tool registry and the upstream server together.
type Gateway struct {
	cfg    config.Config
	logger *slog.Logger
}

// New creates a Gateway from the given config and logger.
func New(cfg config.Config, logger *slog.Logger) *Gateway {
	return &Gateway{cfg: cfg, logger: logger}
}

// build assembles the upstream server with all gate tools registered.
func (g *Gateway) build() (*transport.Upstream, *metrics.Metrics, error) {
	gate, err := BuildGate(g.cfg.Gate, g.logger)
	if err != nil {
		return nil, nil, err
	}
	g.logger.Info("content gate ready", "stages", gate.Stages(), "max_script_length", gate.MaxScriptLength())

	m := metrics.New()
	upstream := transport.NewUpstream(g.cfg.Server, m.Handler(), g.logger)

	count := NewRegistry(upstream.Server, gate, m, g.logger).Register()
	g.logger.Info("tools registered", "total", count)

	return upstream, m, nil
}

// Run builds the gate and serves it until SIGINT/SIGTERM or ctx
// cancellation.
func (g *Gateway) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g.logger.Info("starting content gate")

	upstream, _, err := g.build()
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	g.logger.Info("upstream ready", "transport", g.cfg.Server.Transport)
	return upstream.Run(ctx)
}
