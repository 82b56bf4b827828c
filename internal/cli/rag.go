package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"r2r-mcp/internal/r2r"
)

var ragMaxTokens int

var ragCmd = &cobra.Command{
	Use:     "rag <question>",
	Short:   "Answer a question with retrieval-augmented generation",
	Example: `r2rctl rag "how does hybrid search rank results?"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, _, err := newClient()
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		resp, err := client.RAG(cmd.Context(), r2r.RAGRequest{
			Query: query,
			RAGGeneration: &r2r.RAGSettings{
				MaxTokens:        ragMaxTokens,
				IncludeCitations: true,
			},
		})
		if err != nil {
			return fmt.Errorf("rag query failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, resp.Answer)
		if sources := r2r.ExtractCitations(resp); len(sources) > 0 {
			fmt.Fprintln(out, "\nSources:")
			for i, source := range sources {
				fmt.Fprintf(out, "%d. %s\n", i+1, source)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ragCmd)
	ragCmd.Flags().IntVar(&ragMaxTokens, "max-tokens", 1024, "Token budget for the generated answer")
}
