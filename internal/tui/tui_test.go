package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbqa/internal/domain"
	"kbqa/internal/service"
)

type fakeKB struct {
	docs      []service.DocumentInfo
	history   []domain.HistoryRecord
	uploaded  []string
	deleted   []int
	answer    service.Answer
	askErr    error
	cleared   bool
	previewed int
}

func (f *fakeKB) UploadPaths(_ context.Context, patterns []string) (int, error) {
	f.uploaded = append(f.uploaded, patterns...)
	for _, p := range patterns {
		f.docs = append(f.docs, service.DocumentInfo{Filename: p, Words: 3})
	}
	return len(patterns), nil
}

func (f *fakeKB) Ask(_ context.Context, q string) (service.Answer, error) {
	if f.askErr != nil {
		return service.Answer{}, f.askErr
	}
	f.history = append([]domain.HistoryRecord{{Question: q, Answer: f.answer.Text, Source: f.answer.Source}}, f.history...)
	return f.answer, nil
}

func (f *fakeKB) Delete(_ context.Context, i int) error {
	f.deleted = append(f.deleted, i)
	f.docs = append(f.docs[:i:i], f.docs[i+1:]...)
	return nil
}

func (f *fakeKB) Preview(i int) (string, error) {
	f.previewed = i
	return "preview of " + f.docs[i].Filename, nil
}

func (f *fakeKB) Documents() []service.DocumentInfo { return f.docs }
func (f *fakeKB) Stats() service.Stats {
	return service.Stats{TotalDocuments: len(f.docs), TotalWords: 1234, AverageWords: 617,
		FileTypes: []service.FileTypeCount{{Ext: ".txt", Count: 2}}}
}
func (f *fakeKB) History() []domain.HistoryRecord { return f.history }
func (f *fakeKB) ClearHistory()                   { f.cleared = true; f.history = nil }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+a":
		return tea.KeyMsg{Type: tea.KeyCtrlA}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and returns the messages it produces, expanding batches.
// Spinner ticks are dropped so tests do not wait on timers.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	switch msg.(type) {
	case uploadedMsg, answeredMsg, deletedMsg:
		return []tea.Msg{msg}
	}
	return nil
}

func send(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	next, cmd := m.Update(msg)
	for _, out := range run(cmd) {
		next, _ = next.Update(out)
	}
	return next
}

// press delivers msg without running the returned command.
func press(m tea.Model, msg tea.Msg) tea.Model {
	next, _ := m.Update(msg)
	return next
}

func typeText(m tea.Model, s string) tea.Model {
	return press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func newNotes(kb *fakeKB) tea.Model {
	m := NewNotes(context.Background(), kb, "Knowledge Base", nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next
}

func TestNotes_UploadFlow(t *testing.T) {
	kb := &fakeKB{}
	m := newNotes(kb)

	m = send(t, m, key("enter"))
	assert.Equal(t, "Please select files to upload first.", m.(NotesModel).status)

	m = typeText(m, "a.txt b.pdf")
	m = send(t, m, key("enter"))

	assert.Equal(t, []string{"a.txt", "b.pdf"}, kb.uploaded)
	nm := m.(NotesModel)
	assert.Equal(t, "Added 2 notes to your Knowledge Base!", nm.status)
	assert.Empty(t, nm.upload.Value())
}

func TestNotes_QuestionsNeedDocuments(t *testing.T) {
	kb := &fakeKB{}
	m := newNotes(kb)
	m = press(m, key("tab"))
	m = typeText(m, "anything?")
	m = send(t, m, key("enter"))
	assert.Equal(t, "Upload some notes first to start your Q&A journey!", m.(NotesModel).status)
}

func TestNotes_AskShowsAnswerAndHistory(t *testing.T) {
	kb := &fakeKB{
		docs:   []service.DocumentInfo{{Filename: "bio.txt", Words: 5}},
		answer: service.Answer{Text: "Cells divide.", Source: "bio.txt"},
	}
	m := newNotes(kb)
	m = press(m, key("tab"))
	m = typeText(m, "How do cells divide?")
	m = send(t, m, key("enter"))

	nm := m.(NotesModel)
	require.NotNil(t, nm.answer)
	assert.Equal(t, "Cells divide.", nm.answer.Text)
	assert.Equal(t, "Source: bio.txt", nm.status)
	assert.Contains(t, nm.renderQuestions(), "Q: How do cells divide?...")

	m = press(m, key("ctrl+l"))
	assert.True(t, kb.cleared)
	assert.Equal(t, "Search history cleared!", m.(NotesModel).status)
}

func TestNotes_AskErrorShown(t *testing.T) {
	kb := &fakeKB{docs: []service.DocumentInfo{{Filename: "bio.txt"}}, askErr: errors.New("store down")}
	m := newNotes(kb)
	m = press(m, key("tab"))
	m = typeText(m, "q")
	m = send(t, m, key("enter"))

	nm := m.(NotesModel)
	assert.True(t, nm.failed)
	assert.Equal(t, "Error: store down", nm.status)
}

func TestNotes_ManagePreviewAndDelete(t *testing.T) {
	kb := &fakeKB{docs: []service.DocumentInfo{{Filename: "a.txt", Words: 2}, {Filename: "b.txt", Words: 4}}}
	m := newNotes(kb)
	m = press(m, key("tab"))
	m = press(m, key("tab"))
	m = press(m, key("down"))

	m = press(m, key("p"))
	assert.Equal(t, 1, kb.previewed)
	assert.Contains(t, m.(NotesModel).renderManage(), "preview of b.txt")

	m = press(m, key("p"))
	assert.NotContains(t, m.(NotesModel).renderManage(), "preview of b.txt")

	m = send(t, m, key("d"))
	assert.Equal(t, []int{1}, kb.deleted)
	nm := m.(NotesModel)
	assert.Equal(t, 0, nm.cursor)
	assert.Equal(t, "Deleted b.txt and rebuilt the collection.", nm.status)
}

func TestNotes_Stats(t *testing.T) {
	kb := &fakeKB{docs: []service.DocumentInfo{{Filename: "a.txt"}, {Filename: "b.txt"}}}
	m := newNotes(kb)
	for i := 0; i < 3; i++ {
		m = press(m, key("tab"))
	}
	out := m.(NotesModel).renderStats()
	assert.Contains(t, out, "Total Words        1,234")
	assert.Contains(t, out, "• .txt: 2 files")
}

func TestFormatThousands(t *testing.T) {
	assert.Equal(t, "0", formatThousands(0))
	assert.Equal(t, "999", formatThousands(999))
	assert.Equal(t, "1,000", formatThousands(1000))
	assert.Equal(t, "-12,345,678", formatThousands(-12345678))
}

type fakeNutrition struct{ asked []string }

func (f *fakeNutrition) Ask(_ context.Context, q string) (service.Answer, error) {
	f.asked = append(f.asked, q)
	return service.Answer{Text: service.NoInformationAnswer, Fallback: true}, nil
}

func TestNutrition_AskAndAbout(t *testing.T) {
	app := &fakeNutrition{}
	var m tea.Model = NewNutrition(context.Background(), app, nil)

	m = send(t, m, key("enter"))
	assert.Contains(t, m.View(), "Please enter a question!")

	m = typeText(m, "What is the capital of France?")
	m = send(t, m, key("enter"))
	assert.Equal(t, []string{"What is the capital of France?"}, app.asked)
	assert.Contains(t, m.View(), service.NoInformationAnswer)

	m = press(m, key("ctrl+a"))
	view := m.View()
	for _, topic := range service.NutritionTopics {
		assert.True(t, strings.Contains(view, topic), topic)
	}
}

func TestHighlightBestSentence_KeepsAllSentences(t *testing.T) {
	out := highlightBestSentence("Water hydrates. Iron carries oxygen.", "iron")
	assert.Contains(t, out, "Water hydrates.")
	assert.Contains(t, out, "Iron carries oxygen.")
}
