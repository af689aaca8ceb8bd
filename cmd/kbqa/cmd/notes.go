package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kbqa/internal/tui"
)

var notesTitle string

var notesCmd = &cobra.Command{
	Use:   "notes [FILES...]",
	Short: "Open your knowledge base",
	Long: `Open the knowledge base UI. Upload PDF, Word and text files, ask questions
about them, manage documents and look at collection statistics.

Files given as arguments (globs allowed) are uploaded before the UI opens.

Examples:
  kbqa notes
  kbqa notes lectures/*.pdf summary.docx`,
	RunE: runNotes,
}

func init() {
	notesCmd.Flags().StringVar(&notesTitle, "title", "📚 Blanka's Knowledge Base", "Window title")
	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	kb, closeStore, err := newKnowledgeBase(ctx, e)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	if len(args) > 0 {
		n, err := kb.UploadPaths(ctx, args)
		if err != nil {
			return fmt.Errorf("failed to upload files: %w", err)
		}
		e.log.Info("initial upload", zap.Int("documents", n))
	}

	m := tui.NewNotes(ctx, kb, notesTitle, e.log)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
