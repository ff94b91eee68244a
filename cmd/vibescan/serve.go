package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/logging"
	"github.com/ludo-technologies/vibescan/internal/mcpserver"
	"github.com/ludo-technologies/vibescan/service"
)

func serveCmd() *cobra.Command {
	var configPath, logLevel string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scans to AI assistants over MCP",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing two tools:

  scan         health score, signals and fix prompts for a path
  fix_prompts  only the ranked fix prompts, as copy-pasteable text

Logs go to stderr so they never interleave with protocol messages.

Example client configuration:
  {"command": "vibescan", "args": ["serve"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return commandError(domain.NewConfigError("invalid log level", err))
			}
			logger := logging.New(cmd.ErrOrStderr(), level, true)

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := mcpserver.New(service.NewScanService(logger), configPath, logger)
			return commandError(server.Run(ctx))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Config file applied to every scan (default: discovered per scanned path)")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn",
		"Log level: debug, info, warn, error")
	return cmd
}
