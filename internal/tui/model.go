package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jbonatakis/mockingbird/internal/config"
	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/mockup"
	"github.com/jbonatakis/mockingbird/internal/preview"
)

type ViewMode int

const (
	ViewModeMain ViewMode = iota
	ViewModeHistory
	ViewModeTemplates
	ViewModeSettings
)

// PreviewDir is where `w` writes the current output, relative to the
// project root.
const PreviewDir = "mockup-preview"

type Options struct {
	ProjectRoot string
	Backend     string
	Version     string
	Logger      *slog.Logger
}

type ActionOutput struct {
	Message string
	IsError bool
}

type Model struct {
	ctx         context.Context
	session     *engine.Session
	snap        engine.Snapshot
	logger      *slog.Logger
	projectRoot string
	backend     string
	version     string
	config      config.ResolvedConfig
	settings    SettingsState

	viewMode      ViewMode
	form          Form
	editing       bool
	outputTab     OutputTab
	output        viewport.Model
	historyIndex  int
	templateIndex int
	actionOutput  *ActionOutput
	spinnerIndex  int
	ticking       bool
	windowWidth   int
	windowHeight  int
}

func NewModel(ctx context.Context, session *engine.Session, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := config.LoadConfig(opts.ProjectRoot)
	if err != nil {
		logger.Warn("tui: load config", "error", err)
		cfg = config.DefaultResolvedConfig()
	}

	m := Model{
		ctx:         ctx,
		session:     session,
		logger:      logger,
		projectRoot: opts.ProjectRoot,
		backend:     opts.Backend,
		version:     opts.Version,
		config:      cfg,
		settings:    NewSettingsState(opts.ProjectRoot, cfg),
		viewMode:    ViewModeMain,
		form:        NewForm(),
		output:      viewport.New(80, 10),
	}
	m.refresh()
	m.outputTab = defaultTab(m.snap.Mode)
	return m
}

type sessionChangedMsg struct{}

type spinnerTickMsg struct{}

type templateGeneratedMsg struct {
	ID  string
	Err error
}

// waitForChange blocks on the session's change signal. The model re-arms it
// after every delivery, so there is exactly one waiter.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return sessionChangedMsg{}
	}
}

func spinnerTickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func generateTemplateCmd(ctx context.Context, session *engine.Session, id string) tea.Cmd {
	return func() tea.Msg {
		_, err := session.GenerateTemplate(ctx, id)
		return templateGeneratedMsg{ID: id, Err: err}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForChange(m.session.Changed())}
	if m.snap.Running {
		cmds = append(cmds, spinnerTickCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.layout()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = typed.Width
		m.windowHeight = typed.Height
		m.form.SetSize(typed.Width, typed.Height)
		m.refresh()
		return m, nil
	case sessionChangedMsg:
		m.refresh()
		return m, tea.Batch(waitForChange(m.session.Changed()), m.startSpinner())
	case spinnerTickMsg:
		if !m.busy() {
			m.ticking = false
			return m, nil
		}
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		return m, spinnerTickCmd()
	case templateGeneratedMsg:
		m.refresh()
		if typed.Err != nil {
			m.log().Warn("template generation failed", "template", typed.ID, "error", typed.Err)
			m.actionOutput = &ActionOutput{Message: "Failed to generate template.", IsError: true}
		}
		return m, nil
	case tea.KeyMsg:
		switch m.viewMode {
		case ViewModeSettings:
			return HandleSettingsKey(m, typed)
		case ViewModeHistory:
			return HandleHistoryKey(m, typed)
		case ViewModeTemplates:
			return HandleTemplatesKey(m, typed)
		default:
			return HandleMainKey(m, typed)
		}
	}
	return m, nil
}

// busy reports whether something the spinner should show is in flight.
func (m Model) busy() bool {
	if m.snap.Running {
		return true
	}
	for _, t := range m.snap.Templates {
		if t.Loading {
			return true
		}
	}
	return false
}

func (m *Model) startSpinner() tea.Cmd {
	if m.ticking || !m.busy() {
		return nil
	}
	m.ticking = true
	return spinnerTickCmd()
}

// refresh pulls a new snapshot and re-renders whatever depends on it.
func (m *Model) refresh() {
	m.snap = m.session.Snapshot()
	if !m.editing {
		m.form.Load(m.snap.Draft)
	}
	if m.historyIndex >= len(m.snap.History) {
		m.historyIndex = max(len(m.snap.History)-1, 0)
	}
	if m.templateIndex >= len(m.snap.Templates) {
		m.templateIndex = max(len(m.snap.Templates)-1, 0)
	}
	if !tabAvailable(m.snap.Mode, m.outputTab) {
		m.outputTab = defaultTab(m.snap.Mode)
	}
	m.output.SetContent(renderOutput(*m))
}

// layout gives the output viewport whatever height the rest of the main
// view leaves over.
func (m *Model) layout() {
	width := m.windowWidth
	if width <= 0 {
		width = 80
	}
	m.output.Width = width
	if m.windowHeight <= 0 {
		return
	}
	used := lipgloss.Height(renderMainTop(*m)) + 2
	height := m.windowHeight - used - 1
	if height < 3 {
		height = 3
	}
	m.output.Height = height
}

func (m Model) setMode(mode mockup.Mode) (Model, tea.Cmd) {
	if err := m.session.SetMode(mode); err != nil {
		if errors.Is(err, engine.ErrRunInProgress) {
			m.actionOutput = &ActionOutput{Message: "Wait for the current run to finish before switching modes.", IsError: true}
			return m, nil
		}
		m.actionOutput = &ActionOutput{Message: err.Error(), IsError: true}
		return m, nil
	}
	m.form.ResetFocus()
	m.refresh()
	m.outputTab = defaultTab(mode)
	m.refresh()
	return m, nil
}

func (m Model) startRun() (Model, tea.Cmd) {
	handle, err := m.session.StartRun()
	if err != nil {
		var verr *mockup.ValidationError
		if errors.As(err, &verr) {
			m.actionOutput = &ActionOutput{Message: verr.Message, IsError: true}
		} else {
			m.actionOutput = &ActionOutput{Message: fmt.Sprintf("Run failed to start: %v", err), IsError: true}
		}
		m.refresh()
		return m, nil
	}
	m.log().Debug("tui: run started", "run", handle.ID)
	m.actionOutput = nil
	m.refresh()
	return m, m.startSpinner()
}

func (m Model) writePreview() Model {
	if m.snap.Output.Empty() {
		m.actionOutput = &ActionOutput{Message: "Nothing to write yet.", IsError: true}
		return m
	}
	dir := filepath.Join(m.projectRoot, PreviewDir)
	title := mockup.HistoryEntry{Input: m.snap.Input(), Output: m.snap.Output}.Summary().Title
	paths, err := preview.Write(dir, title, m.snap.Output)
	if err != nil {
		m.log().Warn("tui: write preview", "dir", dir, "error", err)
		m.actionOutput = &ActionOutput{Message: fmt.Sprintf("Write failed: %v", err), IsError: true}
		return m
	}
	m.actionOutput = &ActionOutput{Message: fmt.Sprintf("Wrote %d file(s) to %s", len(paths), dir)}
	return m
}

func (m Model) View() string {
	if m.windowHeight > 0 && m.windowHeight < 4 {
		return RenderBottomBar(m)
	}

	var content string
	switch m.viewMode {
	case ViewModeSettings:
		content = RenderSettingsView(m)
	case ViewModeHistory:
		content = RenderHistoryView(m)
	case ViewModeTemplates:
		content = RenderTemplatesView(m)
	default:
		content = RenderMainView(m)
	}

	if m.windowHeight > 1 {
		return content + "\n" + RenderBottomBar(m)
	}
	return content
}

func (m Model) log() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}
