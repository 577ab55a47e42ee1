package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

func newAskCmd(a *app) *cobra.Command {
	var webSearch bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question, searching the web when it helps",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.pipeline.Ask(cmd.Context(), models.AskRequest{
				Question:  strings.Join(args, " "),
				WebSearch: webSearch,
			})
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			cmd.Println(resp.Answer)
			if len(resp.Sources) > 0 {
				cmd.Println()
				cmd.Println("Sources:")
				for _, src := range resp.Sources {
					cmd.Printf("  - %s (%s)\n", src.Title, src.URL)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&webSearch, "websearch", false, "always search the web first")
	return cmd
}
