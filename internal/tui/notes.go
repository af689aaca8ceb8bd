package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"kbqa/internal/domain"
	"kbqa/internal/service"
)

// KnowledgeBasePort is the TUI-facing subset of the knowledge base session.
type KnowledgeBasePort interface {
	UploadPaths(ctx context.Context, patterns []string) (int, error)
	Ask(ctx context.Context, question string) (service.Answer, error)
	Delete(ctx context.Context, index int) error
	Preview(index int) (string, error)
	Documents() []service.DocumentInfo
	Stats() service.Stats
	History() []domain.HistoryRecord
	ClearHistory()
}

type tab int

const (
	tabUpload tab = iota
	tabQuestions
	tabManage
	tabStats
)

var tabNames = []string{"Upload", "Questions", "Manage", "Stats"}

type (
	uploadedMsg struct {
		count int
		err   error
	}
	answeredMsg struct {
		question string
		answer   service.Answer
		err      error
	}
	deletedMsg struct {
		filename string
		err      error
	}
)

// NotesModel is the tabbed knowledge base UI.
type NotesModel struct {
	ctx     context.Context
	kb      KnowledgeBasePort
	log     *zap.Logger
	title   string
	tab     tab
	upload  textinput.Model
	ask     textinput.Model
	view    viewport.Model
	spinner spinner.Model
	busy    string
	status  string
	failed  bool
	ready   bool

	question string
	answer   *service.Answer
	cursor   int
	preview  int
	excerpt  string
}

// NewNotes creates the knowledge base UI for a started session.
func NewNotes(ctx context.Context, kb KnowledgeBasePort, title string, log *zap.Logger) NotesModel {
	if log == nil {
		log = zap.NewNop()
	}
	up := textinput.New()
	up.Prompt = "files> "
	up.Placeholder = "notes.pdf week*.txt thesis.docx"
	up.CharLimit = 0
	up.Focus()

	ask := textinput.New()
	ask.Prompt = "> "
	ask.Placeholder = "e.g., What are the main findings in my research notes?"
	ask.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return NotesModel{
		ctx:     ctx,
		kb:      kb,
		log:     log,
		title:   title,
		upload:  up,
		ask:     ask,
		view:    viewport.New(0, 0),
		spinner: sp,
		preview: -1,
		status:  "Select files to add to your knowledge base.",
	}
}

func (m NotesModel) Init() tea.Cmd { return textinput.Blink }

func (m NotesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := boxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 + bh // title+tabs, status, input box, spacer, frame
		m.view.Width = max(20, msg.Width-4)
		m.view.Height = max(3, msg.Height-reserved-1)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case uploadedMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.upload.Reset()
			m.setStatus(fmt.Sprintf("Added %d notes to your Knowledge Base!", msg.count))
		}
		m.refresh()
		return m, nil

	case answeredMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			ans := msg.answer
			m.answer = &ans
			m.question = msg.question
			m.ask.Reset()
			m.setStatus("Source: " + ans.Source)
		}
		m.refresh()
		return m, nil

	case deletedMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus("Deleted " + msg.filename + " and rebuilt the collection.")
			if n := len(m.kb.Documents()); m.cursor >= n {
				m.cursor = max(0, n-1)
			}
			m.preview = -1
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			return m.switchTab((m.tab + 1) % tab(len(tabNames)))
		case "shift+tab":
			return m.switchTab((m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames)))
		}
		if m.busy != "" {
			return m, nil
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	switch m.tab {
	case tabUpload:
		m.upload, cmd = m.upload.Update(msg)
	case tabQuestions:
		m.ask, cmd = m.ask.Update(msg)
	}
	return m, cmd
}

func (m NotesModel) handleKey(msg tea.KeyMsg) (NotesModel, tea.Cmd, bool) {
	key := msg.String()
	switch m.tab {
	case tabUpload:
		if key != "enter" {
			return m, nil, false
		}
		patterns := strings.Fields(m.upload.Value())
		if len(patterns) == 0 {
			m.setStatus("Please select files to upload first.")
			return m, nil, true
		}
		m.busy = "Organizing your notes..."
		return m, tea.Batch(m.spinner.Tick, m.uploadCmd(patterns)), true

	case tabQuestions:
		switch key {
		case "enter":
			if len(m.kb.Documents()) == 0 {
				m.setStatus("Upload some notes first to start your Q&A journey!")
				return m, nil, true
			}
			q := strings.TrimSpace(m.ask.Value())
			if q == "" {
				return m, nil, true
			}
			m.busy = "Thinking and searching for you..."
			return m, tea.Batch(m.spinner.Tick, m.askCmd(q)), true
		case "ctrl+l":
			m.kb.ClearHistory()
			m.setStatus("Search history cleared!")
			m.refresh()
			return m, nil, true
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd, true
		}

	case tabManage:
		docs := m.kb.Documents()
		switch key {
		case "up", "k":
			if len(docs) > 0 {
				m.cursor = (m.cursor - 1 + len(docs)) % len(docs)
			}
		case "down", "j":
			if len(docs) > 0 {
				m.cursor = (m.cursor + 1) % len(docs)
			}
		case "p":
			if len(docs) == 0 {
				return m, nil, true
			}
			if m.preview == m.cursor {
				m.preview = -1
				break
			}
			text, err := m.kb.Preview(m.cursor)
			if err != nil {
				m.setError(err)
				break
			}
			m.preview, m.excerpt = m.cursor, text
		case "d":
			if len(docs) == 0 {
				return m, nil, true
			}
			m.busy = "Rebuilding your knowledge base..."
			return m, tea.Batch(m.spinner.Tick, m.deleteCmd(m.cursor, docs[m.cursor].Filename)), true
		default:
			return m, nil, false
		}
		m.refresh()
		return m, nil, true
	}
	return m, nil, false
}

func (m NotesModel) switchTab(t tab) (tea.Model, tea.Cmd) {
	m.tab = t
	m.upload.Blur()
	m.ask.Blur()
	var cmd tea.Cmd
	switch t {
	case tabUpload:
		cmd = m.upload.Focus()
	case tabQuestions:
		cmd = m.ask.Focus()
	}
	m.refresh()
	return m, cmd
}

func (m NotesModel) uploadCmd(patterns []string) tea.Cmd {
	return func() tea.Msg {
		n, err := m.kb.UploadPaths(m.ctx, patterns)
		if err != nil {
			m.log.Error("upload failed", zap.Strings("patterns", patterns), zap.Error(err))
		}
		return uploadedMsg{count: n, err: err}
	}
}

func (m NotesModel) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		ans, err := m.kb.Ask(m.ctx, question)
		if err != nil {
			m.log.Error("question failed", zap.Error(err))
		}
		return answeredMsg{question: question, answer: ans, err: err}
	}
}

func (m NotesModel) deleteCmd(index int, filename string) tea.Cmd {
	return func() tea.Msg {
		err := m.kb.Delete(m.ctx, index)
		if err != nil {
			m.log.Error("delete failed", zap.String("filename", filename), zap.Error(err))
		}
		return deletedMsg{filename: filename, err: err}
	}
}

func (m *NotesModel) setStatus(s string) {
	m.status, m.failed = s, false
}

func (m *NotesModel) setError(err error) {
	m.status, m.failed = "Error: "+err.Error(), true
	if errors.Is(err, service.ErrNoDocuments) {
		m.status = "Upload some notes first to start your Q&A journey!"
	}
}

func (m *NotesModel) refresh() {
	m.view.SetContent(m.renderTab())
}

func (m NotesModel) renderTab() string {
	switch m.tab {
	case tabQuestions:
		return m.renderQuestions()
	case tabManage:
		return m.renderManage()
	case tabStats:
		return m.renderStats()
	default:
		return m.renderUpload()
	}
}

func (m NotesModel) renderUpload() string {
	docs := m.kb.Documents()
	var sb strings.Builder
	sb.WriteString("Upload your notes, readings, or files.\n")
	sb.WriteString(subtleStyle.Render("Supported: PDF, Word, and text files. Separate paths with spaces, globs allowed."))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%d documents in your knowledge base.", len(docs))
	return sb.String()
}

func (m NotesModel) renderQuestions() string {
	if len(m.kb.Documents()) == 0 {
		return "Upload some notes first to start your Q&A journey!"
	}
	var sb strings.Builder
	if m.answer != nil {
		sb.WriteString(labelStyle.Render("Your answer"))
		sb.WriteString("\n")
		sb.WriteString(m.answer.Text)
		sb.WriteString("\n")
		sb.WriteString(subtleStyle.Render("Source: " + m.answer.Source))
		sb.WriteString("\n")
		if !m.answer.Fallback && len(m.answer.Results) > 0 {
			sb.WriteString("\n")
			sb.WriteString(labelStyle.Render("Best match"))
			sb.WriteString("\n")
			sb.WriteString(highlightBestSentence(m.answer.Results[0].Text, m.question))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	history := m.kb.History()
	if len(history) == 0 {
		sb.WriteString(subtleStyle.Render("No searches yet."))
		return sb.String()
	}
	sb.WriteString(labelStyle.Render("Recent searches"))
	sb.WriteString("\n")
	for _, rec := range history {
		sb.WriteString(service.HistoryTitle(rec))
		sb.WriteString("\n  ")
		sb.WriteString(subtleStyle.Render(rec.Answer + " [" + rec.Source + "]"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m NotesModel) renderManage() string {
	docs := m.kb.Documents()
	if len(docs) == 0 {
		return "No documents uploaded yet."
	}
	var sb strings.Builder
	for i, d := range docs {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		fmt.Fprintf(&sb, "%s%s\n     Words: %d\n", cursor, d.Filename, d.Words)
		if i == m.preview {
			sb.WriteString(boxStyle.Render(m.excerpt))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(subtleStyle.Render("up/down select  p preview  d delete"))
	return sb.String()
}

func (m NotesModel) renderStats() string {
	st := m.kb.Stats()
	if st.TotalDocuments == 0 {
		return "No documents to analyze."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total Documents    %s\n", formatThousands(st.TotalDocuments))
	fmt.Fprintf(&sb, "Total Words        %s\n", formatThousands(st.TotalWords))
	fmt.Fprintf(&sb, "Average Words/Doc  %s\n\n", formatThousands(st.AverageWords))
	sb.WriteString(labelStyle.Render("File Types:"))
	sb.WriteString("\n")
	for _, ft := range st.FileTypes {
		fmt.Fprintf(&sb, "• %s: %d files\n", ft.Ext, ft.Count)
	}
	return sb.String()
}

func (m NotesModel) renderTabs() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == m.tab {
			parts[i] = activeTabStyle.Render(name)
		} else {
			parts[i] = tabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m NotesModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	var input string
	switch m.tab {
	case tabUpload:
		input = inputBoxStyle.Render(m.upload.View())
	case tabQuestions:
		input = inputBoxStyle.Render(m.ask.View()) + "\n" + subtleStyle.Render("enter search  ctrl+l clear history")
	}
	status := statusStyle.Render(m.status)
	if m.failed {
		status = errorStyle.Render(m.status)
	}
	if m.busy != "" {
		status = m.spinner.View() + " " + m.busy
	}
	parts := []string{titleStyle.Render(m.title), m.renderTabs(), boxStyle.Render(m.view.View())}
	if input != "" {
		parts = append(parts, input)
	}
	parts = append(parts, status)
	return strings.Join(parts, "\n")
}

var numberPrinter = message.NewPrinter(language.English)

// formatThousands renders n with comma separators.
func formatThousands(n int) string {
	return numberPrinter.Sprintf("%d", n)
}
