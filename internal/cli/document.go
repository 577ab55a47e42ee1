package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

type documentOptions struct {
	docType    string
	objective  string
	webSearch  bool
	fetchPages bool
	out        string
	model      string
}

func newDocumentCmd(a *app) *cobra.Command {
	var opts documentOptions

	cmd := &cobra.Command{
		Use:   "document [requirements...]",
		Short: "Plan and write a complete document",
		Long: `Plans the document's sections, optionally researches the objective on the
web, writes each section and saves the Markdown. The output file is written
only when every section succeeded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDocument(cmd, opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&opts.docType, "type", "t", models.DocTypeDocument.String(),
		"document type: "+docTypeNames())
	cmd.Flags().StringVarP(&opts.objective, "objective", "o", "", "what the document should achieve")
	cmd.Flags().BoolVar(&opts.webSearch, "websearch", false, "gather background research from the web")
	cmd.Flags().BoolVar(&opts.fetchPages, "fetch-pages", false, "also read the top result pages")
	cmd.Flags().StringVar(&opts.out, "out", "", "output file (default derived from the document type)")
	cmd.Flags().StringVar(&opts.model, "model", "", "override the completion model")
	_ = cmd.MarkFlagRequired("objective")
	return cmd
}

func docTypeNames() string {
	var names []string
	for _, t := range models.DocTypes() {
		names = append(names, fmt.Sprintf("%q", t.String()))
	}
	return strings.Join(names, ", ")
}

// defaultOutputPath names the output after the document type, e.g.
// "research_report.md".
func defaultOutputPath(t models.DocType) string {
	return strings.ToLower(strings.ReplaceAll(t.String(), " ", "_")) + ".md"
}

func (a *app) runDocument(cmd *cobra.Command, opts documentOptions, requirements string) error {
	docType, err := models.ParseDocType(opts.docType)
	if err != nil {
		return err
	}
	objective := strings.TrimSpace(opts.objective)
	if objective == "" {
		return fmt.Errorf("--objective must not be empty")
	}

	run, err := a.pipeline.CreateDocument(cmd.Context(), models.CreateDocumentRequest{
		DocType:      docType,
		Objective:    objective,
		Requirements: requirements,
		WebSearch:    opts.webSearch,
		FetchPages:   opts.fetchPages,
		Model:        opts.model,
	})
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	path := opts.out
	if path == "" {
		path = defaultOutputPath(docType)
	}
	if err := writeFileAtomic(path, []byte(run.Rendered)); err != nil {
		return err
	}

	a.log.Debug("document written", zap.String("path", path), zap.String("run_id", run.RunID))
	cmd.Printf("Wrote %d sections to %s\n", len(run.Document.Sections), path)
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// into place, so path is either untouched or complete.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
