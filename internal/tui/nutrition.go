package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"kbqa/internal/service"
)

// AskPort answers a single question.
type AskPort interface {
	Ask(ctx context.Context, question string) (service.Answer, error)
}

// NutritionModel is the single-screen Nutrition 101 UI.
type NutritionModel struct {
	ctx       context.Context
	app       AskPort
	log       *zap.Logger
	input     textinput.Model
	spinner   spinner.Model
	busy      bool
	showAbout bool
	answer    string
	status    string
	width     int
}

func NewNutrition(ctx context.Context, app AskPort, log *zap.Logger) NutritionModel {
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = service.NutritionPrompt
	ti.CharLimit = 0
	ti.Focus()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return NutritionModel{
		ctx:     ctx,
		app:     app,
		log:     log,
		input:   ti,
		spinner: sp,
		status:  "enter find the right answer  ctrl+a about  ctrl+c quit",
	}
}

func (m NutritionModel) Init() tea.Cmd { return textinput.Blink }

func (m NutritionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case answeredMsg:
		m.busy = false
		if msg.err != nil {
			m.answer = errorStyle.Render("Error: " + msg.err.Error())
		} else {
			m.answer = msg.answer.Text
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyCtrlA:
			m.showAbout = !m.showAbout
			return m, nil
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				m.answer = "Please enter a question!"
				return m, nil
			}
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.askCmd(q))
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m NutritionModel) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		ans, err := m.app.Ask(m.ctx, question)
		if err != nil {
			m.log.Error("question failed", zap.Error(err))
		}
		return answeredMsg{question: question, answer: ans, err: err}
	}
}

func (m NutritionModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(service.NutritionTitle))
	sb.WriteString("\n")
	sb.WriteString(service.NutritionWelcome)
	sb.WriteString("\n\n")
	sb.WriteString(inputBoxStyle.Render(m.input.View()))
	sb.WriteString("\n")
	switch {
	case m.busy:
		sb.WriteString(m.spinner.View() + " Getting answer...")
	case m.answer != "":
		sb.WriteString(labelStyle.Render("Answer:"))
		sb.WriteString("\n")
		sb.WriteString(m.answer)
	}
	sb.WriteString("\n\n")
	if m.showAbout {
		sb.WriteString(boxStyle.Render(aboutText()))
		sb.WriteString("\n")
	}
	sb.WriteString(subtleStyle.Render(m.status))
	return sb.String()
}

func aboutText() string {
	var sb strings.Builder
	sb.WriteString(labelStyle.Render("About Nutrition 101"))
	sb.WriteString("\nThe main topics include:\n")
	for _, t := range service.NutritionTopics {
		sb.WriteString("  • " + t + "\n")
	}
	sb.WriteString("\n" + service.NutritionAbout)
	return sb.String()
}
