package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"remotemcp/internal/config"
	"remotemcp/internal/server"
	"remotemcp/pkg/logging"
)

// newServeCmd creates the command that runs the HTTP server.
func newServeCmd() *cobra.Command {
	var configPath string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the remote MCP server",
		Long: `Starts the HTTP server: the OAuth 2.1 authorization endpoints, the
discovery documents, and the token-protected /mcp endpoint.

Configuration is read from the given YAML file (missing file falls back
to defaults), with REMOTEMCP_API_KEY, REMOTEMCP_JWT_SECRET, and
REMOTEMCP_PUBLIC_URL environment overrides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			level := logging.ParseLevel(cfg.Logging.Level)
			if debug {
				level = logging.LevelDebug
			}
			logging.Init(level, os.Stderr)

			logging.Info("Bootstrap", "Starting remotemcp %s", rootCmd.Version)

			srv := server.New(&cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}
