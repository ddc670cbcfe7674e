package tui

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/mockingbird/internal/config"
	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/generate"
	"github.com/jbonatakis/mockingbird/internal/history"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	home := t.TempDir()
	restoreHome := config.SetUserHomeDirForTest(func() (string, error) {
		return home, nil
	})
	t.Cleanup(restoreHome)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hist := history.NewManager(history.NewMemoryStore(nil), history.WithDebounce(0), history.WithLogger(logger))
	session := engine.NewSession(generate.NewLocal(), hist, engine.WithLogger(logger))
	session.Init(context.Background())
	t.Cleanup(func() { session.Close(context.Background()) })

	m := NewModel(context.Background(), session, Options{
		ProjectRoot: t.TempDir(),
		Backend:     "local",
		Version:     "test",
		Logger:      logger,
	})
	return send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return next
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, key := range keys {
		m = send(t, m, keyMsg(key))
	}
	return m
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

// settle waits for the in-flight run and feeds the change into the model.
func settle(t *testing.T, m Model) Model {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.session.Wait(ctx); err != nil {
		t.Fatalf("wait for run: %v", err)
	}
	return send(t, m, sessionChangedMsg{})
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m = press(t, m, "enter")
	if !m.editing {
		t.Fatalf("expected editing after enter")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return press(t, m, "esc")
}

func TestNewModelStartsInDescriptionMode(t *testing.T) {
	m := newTestModel(t)
	if m.snap.Mode != mockup.ModeDescription {
		t.Fatalf("expected description mode, got %s", m.snap.Mode)
	}
	if m.outputTab != OutputTabPrompt {
		t.Fatalf("expected prompt tab, got %s", m.outputTab)
	}
	view := m.View()
	for _, want := range []string{"1 Describe UI", "2 Remix HTML", "3 Clone URL", "Describe your UI idea", "[r]un"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view, got %q", want, view)
		}
	}
}

func TestEditingPushesTextIntoSession(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "a login page")
	if m.editing {
		t.Fatalf("expected editing to stop on esc")
	}
	if got := m.session.Snapshot().Draft.Text; got != "a login page" {
		t.Fatalf("expected draft text to follow the editor, got %q", got)
	}
}

func TestRunWithEmptyInputShowsValidation(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "r")
	if m.actionOutput == nil || !m.actionOutput.IsError {
		t.Fatalf("expected validation error, got %+v", m.actionOutput)
	}
	if m.actionOutput.Message != "Please describe your UI idea." {
		t.Fatalf("unexpected message %q", m.actionOutput.Message)
	}
	if m.snap.Running {
		t.Fatalf("expected no run after failed validation")
	}
}

func TestRunSettlesAndRecordsHistory(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "a pricing page")
	m = press(t, m, "r")
	m = settle(t, m)

	if m.snap.Running {
		t.Fatalf("expected run to settle")
	}
	if len(m.snap.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(m.snap.History))
	}
	if m.snap.Output.EnhancedPrompt == nil || m.snap.Output.HTML == nil {
		t.Fatalf("expected prompt and html output, got %+v", m.snap.Output)
	}
	if !strings.Contains(m.output.View(), m.snap.Output.PromptText()[:10]) {
		t.Fatalf("expected prompt in output viewport")
	}

	m = press(t, m, "o")
	if m.outputTab != OutputTabImage {
		t.Fatalf("expected image tab, got %s", m.outputTab)
	}
	m = press(t, m, "o", "o", "o")
	if m.outputTab != OutputTabPrompt {
		t.Fatalf("expected tabs to wrap to prompt, got %s", m.outputTab)
	}
}

func TestWritePreview(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "w")
	if m.actionOutput == nil || !m.actionOutput.IsError {
		t.Fatalf("expected nothing-to-write error, got %+v", m.actionOutput)
	}

	m = typeText(t, m, "a dashboard")
	m = settle(t, press(t, m, "r"))
	m = press(t, m, "w")
	if m.actionOutput == nil || m.actionOutput.IsError {
		t.Fatalf("expected write to succeed, got %+v", m.actionOutput)
	}
	if _, err := os.Stat(filepath.Join(m.projectRoot, PreviewDir, "index.html")); err != nil {
		t.Fatalf("expected preview index.html: %v", err)
	}
}

func TestModeSwitchResetsFocusAndTab(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "tab", "2")
	if m.snap.Mode != mockup.ModeModify {
		t.Fatalf("expected modify mode, got %s", m.snap.Mode)
	}
	if m.outputTab != OutputTabHTML {
		t.Fatalf("expected html tab, got %s", m.outputTab)
	}
	if got := m.form.FocusedField(m.snap.Mode); got != mockup.FieldBaseHTML {
		t.Fatalf("expected focus on base html, got %s", got)
	}

	m = press(t, m, "3")
	if m.snap.Mode != mockup.ModeClone {
		t.Fatalf("expected clone mode, got %s", m.snap.Mode)
	}
	m = press(t, m, "O")
	if m.outputTab != OutputTabSources {
		t.Fatalf("expected reverse cycle to sources, got %s", m.outputTab)
	}
}

func TestStylePickerCycles(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "tab")
	if got := m.form.FocusedField(m.snap.Mode); got != mockup.FieldStyle {
		t.Fatalf("expected style focus, got %s", got)
	}
	m = press(t, m, "right")
	if want := nextStyle(mockup.DefaultStyle, 1); m.snap.Draft.Style != want {
		t.Fatalf("expected style %s, got %s", want, m.snap.Draft.Style)
	}
	m = press(t, m, "left")
	if m.snap.Draft.Style != mockup.DefaultStyle {
		t.Fatalf("expected style back to default, got %s", m.snap.Draft.Style)
	}
}

func TestScreenshotsLoadOnCommit(t *testing.T) {
	m := newTestModel(t)
	shot := filepath.Join(m.projectRoot, "shot.png")
	if err := os.WriteFile(shot, testPNG(t, 2, 2), 0o644); err != nil {
		t.Fatalf("write screenshot: %v", err)
	}

	m = press(t, m, "3", "tab")
	m = typeText(t, m, "shot.png")
	if got := len(m.snap.Draft.Screenshots); got != 1 {
		t.Fatalf("expected 1 screenshot attached, got %d", got)
	}

	m = typeText(t, m, ",missing.png")
	if m.actionOutput == nil || !m.actionOutput.IsError {
		t.Fatalf("expected read error for missing screenshot, got %+v", m.actionOutput)
	}
}

func TestHistoryRestoreAndClear(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "first idea")
	m = settle(t, press(t, m, "r"))

	if err := m.session.SetInput(mockup.FieldText, "something else"); err != nil {
		t.Fatalf("set input: %v", err)
	}
	m = send(t, m, sessionChangedMsg{})

	m = press(t, m, "H")
	if m.viewMode != ViewModeHistory {
		t.Fatalf("expected history view")
	}
	if !strings.Contains(m.View(), "first idea") {
		t.Fatalf("expected entry title in history view, got %q", m.View())
	}

	m = press(t, m, "enter")
	if m.viewMode != ViewModeMain {
		t.Fatalf("expected main view after restore")
	}
	if m.snap.Draft.Text != "first idea" {
		t.Fatalf("expected restored text, got %q", m.snap.Draft.Text)
	}

	m = press(t, m, "H", "D")
	if len(m.snap.History) != 0 {
		t.Fatalf("expected history cleared, got %d entries", len(m.snap.History))
	}
	if !strings.Contains(m.View(), "No history yet") {
		t.Fatalf("expected empty history message")
	}
}

func TestTemplatesRequireGenerationBeforeUse(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "T", "b")
	if m.actionOutput == nil || !strings.Contains(m.actionOutput.Message, "Generate the template first") {
		t.Fatalf("expected not-ready message, got %+v", m.actionOutput)
	}

	id := m.snap.Templates[m.templateIndex].ID
	if _, err := m.session.GenerateTemplate(context.Background(), id); err != nil {
		t.Fatalf("generate template: %v", err)
	}
	m = send(t, m, templateGeneratedMsg{ID: id})
	if !strings.Contains(m.View(), "ready") {
		t.Fatalf("expected ready status, got %q", m.View())
	}

	m = press(t, m, "b")
	if m.viewMode != ViewModeMain || m.snap.Mode != mockup.ModeModify {
		t.Fatalf("expected modify mode in main view, got view %d mode %s", m.viewMode, m.snap.Mode)
	}
	if m.snap.Draft.BaseHTML == "" {
		t.Fatalf("expected template html in base field")
	}
}

func TestSpinnerStopsWhenIdle(t *testing.T) {
	m := newTestModel(t)
	m.ticking = true
	m = send(t, m, spinnerTickMsg{})
	if m.ticking {
		t.Fatalf("expected spinner to stop when nothing is running")
	}
}
