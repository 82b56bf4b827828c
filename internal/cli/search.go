package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"r2r-mcp/internal/r2r"
)

var searchLimit int
var searchJSON bool

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Short:   "Search the knowledge base",
	Example: `r2rctl search "vector database indexing" --limit 3`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, _, err := newClient()
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		resp, err := client.Search(cmd.Context(), r2r.SearchRequest{
			Query: query,
			SearchSettings: &r2r.SearchSettings{
				Limit:           searchLimit,
				UseHybridSearch: true,
			},
		})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if searchJSON {
			out, err := json.MarshalIndent(resp.Results.ChunkSearchResults, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), r2r.FormatSearchResults(resp, 0))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 5, "Maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print raw chunk results as JSON")
}
