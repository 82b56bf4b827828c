package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, _, err := newClient()
		if err != nil {
			return err
		}

		if err := client.Health(cmd.Context()); err != nil {
			return fmt.Errorf("backend %s unreachable: %w", cfg.Backend.BaseURL, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "backend %s is healthy\n", cfg.Backend.BaseURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
