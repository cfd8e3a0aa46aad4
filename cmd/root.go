package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the remotemcp application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "remotemcp",
	Short: "Remote MCP server for academiadepolitie.com",
	Long: `remotemcp exposes the academiadepolitie.com learning platform to AI
assistants over the Model Context Protocol, behind an OAuth 2.1
authorization-code flow with PKCE.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles subcommands and flags.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "remotemcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
