package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kbqa/internal/service"
)

var askFiles []string

var askCmd = &cobra.Command{
	Use:   "ask QUESTION",
	Short: "Answer one question over the given files",
	Long: `Index the given files into a fresh collection, answer one question and
print the answer with its source document.

Examples:
  kbqa ask "What is mitosis?" --file biology.txt
  kbqa ask "Who wrote the report?" -f 'reports/*.pdf' -f notes.docx`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArrayVarP(&askFiles, "file", "f", nil, "File or glob to index (repeatable, required)")
	_ = askCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	kb, closeStore, err := newKnowledgeBase(ctx, e)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	if _, err := kb.UploadPaths(ctx, askFiles); err != nil {
		return fmt.Errorf("failed to upload files: %w", err)
	}
	ans, err := kb.Ask(ctx, args[0])
	if errors.Is(err, service.ErrNoDocuments) {
		return fmt.Errorf("no files matched %v", askFiles)
	}
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ans.Text)
	fmt.Fprintf(out, "\nSource: %s\n", ans.Source)
	return nil
}
