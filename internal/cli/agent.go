package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"r2r-mcp/internal/r2r"
)

var agentConversation string

var agentCmd = &cobra.Command{
	Use:     "agent <message>",
	Short:   "Send one turn to the backend's conversational agent",
	Example: `r2rctl agent "which documents mention load shedding?" --conversation 42`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, _, err := newClient()
		if err != nil {
			return err
		}

		resp, err := client.Agent(cmd.Context(), r2r.AgentRequest{
			Message: r2r.AgentMessage{
				Role:    "user",
				Content: strings.Join(args, " "),
			},
			ConversationID: agentConversation,
		})
		if err != nil {
			return fmt.Errorf("agent turn failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, resp.Response)
		if resp.ConversationID != "" {
			fmt.Fprintf(out, "\nconversation: %s\n", resp.ConversationID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.Flags().StringVar(&agentConversation, "conversation", "", "Conversation ID to continue")
}
