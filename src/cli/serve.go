package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Easy-Infra-Ltd/easy-content-gate/src/config"
	"github.com/Easy-Infra-Ltd/easy-content-gate/src/gateway"
)

func (a *app) serveCmd() *cobra.Command {
	var transportName, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gate as MCP tools over stdio or streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("transport") {
				cfg.Server.Transport = transportName
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.HTTP.Addr = addr
			}
			if t := cfg.Server.Transport; t != config.TransportStdio && t != config.TransportHTTP {
				return fmt.Errorf("unsupported transport %q", t)
			}

			return gateway.New(cfg, a.logger).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&transportName, "transport", "t", config.TransportStdio, "transport: stdio or http")
	cmd.Flags().StringVar(&addr, "addr", config.DefaultHTTPAddr, "HTTP listen address")
	return cmd
}

func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
