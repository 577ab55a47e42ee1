// Package cli implements the assistant command line: one-shot document
// generation, search, extraction and question answering.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayush/research-ai-agent/assistant/internal/config"
	"github.com/ayush/research-ai-agent/assistant/internal/logging"
	"github.com/ayush/research-ai-agent/assistant/internal/models"
	"github.com/ayush/research-ai-agent/assistant/internal/research"
)

// Pipeline is the part of the research service the commands drive.
type Pipeline interface {
	CreateDocument(ctx context.Context, req models.CreateDocumentRequest) (*research.DocumentRun, error)
	Search(ctx context.Context, query string) []models.SearchResult
	Extract(ctx context.Context, req models.ExtractRequest) (string, error)
	Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error)
}

// Factory builds the pipeline once configuration and logging are ready.
type Factory func(cfg *config.Config, log *zap.Logger) (Pipeline, error)

// DefaultFactory builds the real pipeline without a search cache.
func DefaultFactory(cfg *config.Config, log *zap.Logger) (Pipeline, error) {
	svc, err := research.NewFromConfig(cfg, nil, log)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

type app struct {
	build    Factory
	verbose  bool
	log      *zap.Logger
	pipeline Pipeline
}

// NewRootCmd returns the assistant command tree.
func NewRootCmd(build Factory) *cobra.Command {
	a := &app{build: build}

	root := &cobra.Command{
		Use:   "assistant",
		Short: "Research and document synthesis assistant",
		Long: `Plans a document as a bounded chain of sections, optionally gathers
background research from the web, and writes every section with a language model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetOut(os.Stdout)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newDocumentCmd(a),
		newSearchCmd(a),
		newExtractCmd(a),
		newAskCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	log, err := logging.New(level, "console")
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.log = log

	a.pipeline, err = a.build(cfg, log)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	return nil
}
