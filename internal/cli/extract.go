package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

func newExtractCmd(a *app) *cobra.Command {
	var req models.ExtractRequest
	var file string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the parts of a text relevant to an objective and task",
		Long: `Reads text from --file (or stdin when --file is "-" or empty), splits it
into overlapping chunks and asks the model for the relevant information in each.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			req.Text = text
			notes, err := a.pipeline.Extract(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}
			cmd.Println(notes)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Objective, "objective", "o", "", "overall objective")
	cmd.Flags().StringVar(&req.Task, "task", "", "current task")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "text file to analyze")
	_ = cmd.MarkFlagRequired("objective")
	return cmd
}

func readInput(cmd *cobra.Command, file string) (string, error) {
	if file == "" || file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(data), nil
}
