package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"kbqa/internal/service"
	"kbqa/internal/tui"
)

var nutritionQuestion string

var nutritionCmd = &cobra.Command{
	Use:   "nutrition",
	Short: "Ask the Nutrition 101 database",
	Long: `Ask questions about nutrition, macronutrients, micronutrients, hydration
and chronic disease prevention.

Without --question an interactive screen is opened.

Examples:
  kbqa nutrition
  kbqa nutrition -q "Why is iron important?"`,
	Args: cobra.NoArgs,
	RunE: runNutrition,
}

func init() {
	nutritionCmd.Flags().StringVarP(&nutritionQuestion, "question", "q", "", "Answer one question and exit")
	rootCmd.AddCommand(nutritionCmd)
}

func runNutrition(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	interactive := nutritionQuestion == ""
	e, err := setup(ctx, interactive)
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	p, err := newPipeline(ctx, e, service.NutritionCollection)
	if err != nil {
		return err
	}
	defer func() { _ = p.store.Close() }()

	app := service.NewNutrition(p.store, p.generator, answerOptions(e.cfg), e.metrics, e.log)
	if err := app.Setup(ctx); err != nil {
		return fmt.Errorf("failed to set up nutrition database: %w", err)
	}

	if !interactive {
		ans, err := app.Ask(ctx, nutritionQuestion)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ans.Text)
		return nil
	}

	m := tui.NewNutrition(ctx, app, e.log)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
