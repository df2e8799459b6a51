// Package cli defines the contentgate command tree.
package cli

import (
	"log/slog"
	"os"

	logger "github.com/Easy-Infra-Ltd/easy-logger"
	"github.com/spf13/cobra"

	"github.com/Easy-Infra-Ltd/easy-content-gate/src/config"
	"github.com/Easy-Infra-Ltd/easy-content-gate/src/transport"
)

// app holds state shared by every command.
type app struct {
	cfgPath string
	jsonOut bool
	logger  *slog.Logger
}

// NewRootCmd builds the command tree with the process logger from the
// environment.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

// newRootCmd builds the command tree. A nil log is replaced with the
// environment-configured logger once flags are parsed.
func newRootCmd(log *slog.Logger) *cobra.Command {
	a := &app{logger: log}

	root := &cobra.Command{
		Use:           "contentgate",
		Short:         "Content-safety gate for generation prompts and uploads",
		Long:          `Screens untrusted prompts and upload metadata for markup and SQL attack signatures, strips markup, enforces length limits, and sanitizes file names. Runs as an MCP server or as one-shot checks.`,
		Version:       transport.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			if a.logger == nil {
				a.logger = logger.CreateLoggerFromEnv(nil, "blue").With("process", "contentgate")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "path to a JSON or YAML config file")

	root.AddCommand(a.serveCmd(), a.checkCmd())
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
