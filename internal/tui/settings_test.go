package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/mockingbird/internal/config"
)

func newSettingsModel(t *testing.T, key string) Model {
	t.Helper()
	projectRoot := t.TempDir()
	home := t.TempDir()
	restoreHome := config.SetUserHomeDirForTest(func() (string, error) {
		return home, nil
	})
	t.Cleanup(restoreHome)

	m := Model{
		viewMode:    ViewModeSettings,
		projectRoot: projectRoot,
		config:      config.DefaultResolvedConfig(),
	}
	m.settings = NewSettingsState(projectRoot, m.config)
	if key != "" {
		idx := optionIndex(m.settings.Options, key)
		if idx < 0 {
			t.Fatalf("missing option %s", key)
		}
		m.settings.Selected = idx
	}
	return m
}

func optionIndex(options []config.OptionMetadata, key string) int {
	for i, option := range options {
		if option.KeyPath == key {
			return i
		}
	}
	return -1
}

func settingsKeys(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, key := range keys {
		m, _ = HandleSettingsKey(m, keyMsg(key))
	}
	return m
}

func TestSettingsNavigationMovesRowAndColumn(t *testing.T) {
	m := newSettingsModel(t, "")
	m = settingsKeys(t, m, "down")
	if m.settings.Selected != 1 {
		t.Fatalf("expected row 1, got %d", m.settings.Selected)
	}
	m = settingsKeys(t, m, "right")
	if m.settings.Column != SettingsColumnGlobal {
		t.Fatalf("expected global column, got %d", m.settings.Column)
	}
	m = settingsKeys(t, m, "left", "left", "left")
	if m.settings.Column != SettingsColumnOption {
		t.Fatalf("expected column clamped at option, got %d", m.settings.Column)
	}
	m = settingsKeys(t, m, "up", "up")
	if m.settings.Selected != 0 {
		t.Fatalf("expected row clamped at 0, got %d", m.settings.Selected)
	}
	m = settingsKeys(t, m, "esc")
	if m.viewMode != ViewModeMain {
		t.Fatalf("expected esc to return to main view")
	}
}

func TestSettingsBoolToggleAndClear(t *testing.T) {
	m := newSettingsModel(t, "clone.capture")

	m = settingsKeys(t, m, "space")
	cfg, present, err := config.LoadProjectConfig(m.projectRoot)
	if err != nil {
		t.Fatalf("load project config: %v", err)
	}
	if !present || cfg.Clone == nil || cfg.Clone.Capture == nil || !*cfg.Clone.Capture {
		t.Fatalf("expected clone.capture true in local config")
	}
	if got := m.settings.Resolution.Applied["clone.capture"].Source; got != config.ConfigSourceLocal {
		t.Fatalf("expected local source, got %s", got)
	}
	if !m.config.Clone.Capture {
		t.Fatalf("expected model config to follow the save")
	}

	m = settingsKeys(t, m, "delete")
	if _, present, err = config.LoadProjectConfig(m.projectRoot); err != nil || present {
		t.Fatalf("expected local config removed after clearing its last value (present=%v err=%v)", present, err)
	}
	if got := m.settings.Resolution.Applied["clone.capture"].Source; got != config.ConfigSourceDefault {
		t.Fatalf("expected default source after clear, got %s", got)
	}
}

func TestSettingsIntEditValidation(t *testing.T) {
	m := newSettingsModel(t, "generation.timeoutSeconds")

	m = settingsKeys(t, m, "enter")
	if !m.settings.Editing {
		t.Fatalf("expected edit mode")
	}
	m = settingsKeys(t, m, "x")
	if m.settings.SaveErr == nil {
		t.Fatalf("expected digits-only error")
	}
	m = settingsKeys(t, m, "9", "9", "9", "9", "enter")
	if m.settings.SaveErr == nil || !m.settings.Editing {
		t.Fatalf("expected out-of-range error to keep the editor open")
	}

	m = settingsKeys(t, m, "backspace", "backspace", "enter")
	if m.settings.Editing || m.settings.SaveErr != nil {
		t.Fatalf("expected save to close editor, err=%v", m.settings.SaveErr)
	}
	if m.config.Generation.TimeoutSeconds != 99 {
		t.Fatalf("expected timeout 99, got %d", m.config.Generation.TimeoutSeconds)
	}
}

func TestSettingsChoiceCycles(t *testing.T) {
	m := newSettingsModel(t, "generation.backend")

	m = settingsKeys(t, m, "enter")
	if m.settings.Editing {
		t.Fatalf("choice options should cycle, not open the editor")
	}
	if m.config.Generation.Backend != config.BackendGemini {
		t.Fatalf("expected auto to cycle to gemini, got %s", m.config.Generation.Backend)
	}
	m = settingsKeys(t, m, "space", "space", "space")
	if m.config.Generation.Backend != config.BackendAuto {
		t.Fatalf("expected choices to wrap to auto, got %s", m.config.Generation.Backend)
	}
}

func TestSettingsStringEditGlobal(t *testing.T) {
	m := newSettingsModel(t, "server.addr")
	m = settingsKeys(t, m, "right", "enter")
	if !m.settings.Editing {
		t.Fatalf("expected edit mode on global column")
	}
	for _, r := range "0.0.0.0:9000" {
		m = settingsKeys(t, m, string(r))
	}
	m = settingsKeys(t, m, "enter")
	if m.settings.SaveErr != nil {
		t.Fatalf("unexpected save error: %v", m.settings.SaveErr)
	}
	if got := m.settings.Resolution.Applied["server.addr"].Source; got != config.ConfigSourceGlobal {
		t.Fatalf("expected global source, got %s", got)
	}
	if m.config.Server.Addr != "0.0.0.0:9000" {
		t.Fatalf("expected addr saved, got %q", m.config.Server.Addr)
	}
}

func TestSettingsViewShowsLayersAndValues(t *testing.T) {
	m := newSettingsModel(t, "history.backend")
	out := RenderSettingsView(m)
	for _, want := range []string{"Settings", "Local > Global > Default", "History Backend", "file (default)", "choices: file/sqlite"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in settings view, got %q", want, out)
		}
	}
	if strings.Contains(out, "N/A") {
		t.Fatalf("expected both layer paths to be available, got %q", out)
	}

	m.settings.Editing = true
	m.settings.EditValue = "sql"
	if out := RenderSettingsView(m); !strings.Contains(out, "sql_") {
		t.Fatalf("expected edit cursor in view, got %q", out)
	}
}

func TestSettingsCtrlCQuits(t *testing.T) {
	m := newSettingsModel(t, "")
	_, cmd := HandleSettingsKey(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}
