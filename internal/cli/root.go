// Package cli implements the r2rctl command line client, a thin operator
// surface over the same backend gateway the MCP server uses.
package cli

import (
	"github.com/spf13/cobra"

	"r2r-mcp/internal/auth"
	"r2r-mcp/internal/config"
	"r2r-mcp/internal/logging"
	"r2r-mcp/internal/r2r"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "r2rctl",
	Short:         "Command line client for the R2R retrieval backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")
}

// newClient loads configuration and builds the backend gateway. The API key
// is resolved from the environment on every request, so rotating it does
// not require re-running the command with new state.
func newClient() (*r2r.Client, *config.Config, *logging.Logger, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := logging.NewLogger()
	logger.SetLevel(cfg.Log.Level)

	tokens := auth.NewEnvTokenSource(cfg.Backend.APIKeyEnv)
	client := r2r.NewClient(cfg.Backend.BaseURL, tokens, cfg.BackendTimeout())
	return client, cfg, logger, nil
}
