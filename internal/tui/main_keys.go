package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

// HandleMainKey handles key presses in the generation view. While a field is
// being edited every key except esc and ctrl+r/ctrl+c goes to its editor.
func HandleMainKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+r":
		m = m.stopEditing()
		return m.startRun()
	}
	if m.editing {
		return handleEditKey(m, msg)
	}

	mode := m.snap.Mode
	focused := m.form.FocusedField(mode)
	switch key {
	case "q":
		return m, tea.Quit
	case "1", "2", "3":
		return m.setMode(mockup.Modes[key[0]-'1'])
	case "tab":
		m.form.FocusNext(mode)
	case "shift+tab":
		m.form.FocusPrev(mode)
	case "enter", "i":
		cmd, ok := m.form.StartEditing(focused)
		if !ok {
			return m.cycleStyle(1)
		}
		m.editing = true
		m.actionOutput = nil
		return m, cmd
	case "left", "right":
		if focused != mockup.FieldStyle {
			return m, nil
		}
		if key == "left" {
			return m.cycleStyle(-1)
		}
		return m.cycleStyle(1)
	case "r":
		return m.startRun()
	case "o":
		m.outputTab = cycleTab(mode, m.outputTab, 1)
		m.output.GotoTop()
		m.refresh()
	case "O":
		m.outputTab = cycleTab(mode, m.outputTab, -1)
		m.output.GotoTop()
		m.refresh()
	case "w":
		m = m.writePreview()
	case "H":
		m.viewMode = ViewModeHistory
	case "T":
		m.viewMode = ViewModeTemplates
	case ",":
		m.viewMode = ViewModeSettings
	case "up", "down", "k", "j", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}
	return m, nil
}

func handleEditKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "esc" {
		return m.stopEditing(), nil
	}
	field := m.form.FocusedField(m.snap.Mode)
	value, cmd := m.form.Update(field, msg)
	// Screenshot paths are only read once editing ends.
	if field == mockup.FieldScreenshots {
		return m, cmd
	}
	if err := m.session.SetInput(field, value); err != nil {
		m.actionOutput = &ActionOutput{Message: err.Error(), IsError: true}
	}
	return m, cmd
}

func (m Model) stopEditing() Model {
	if !m.editing {
		return m
	}
	field := m.form.FocusedField(m.snap.Mode)
	m.form.StopEditing()
	m.editing = false
	if field == mockup.FieldScreenshots {
		m = m.commitScreenshots()
	}
	m.refresh()
	return m
}

func (m Model) commitScreenshots() Model {
	list := m.form.Value(mockup.FieldScreenshots)
	images, err := loadScreenshots(list, m.projectRoot)
	if err != nil {
		m.actionOutput = &ActionOutput{Message: err.Error(), IsError: true}
		return m
	}
	if len(images) == 0 {
		return m
	}
	if err := m.session.SetScreenshots(images); err != nil {
		m.actionOutput = &ActionOutput{Message: err.Error(), IsError: true}
		return m
	}
	m.actionOutput = &ActionOutput{Message: fmt.Sprintf("Attached %d screenshot(s).", len(images))}
	return m
}

func (m Model) cycleStyle(delta int) (Model, tea.Cmd) {
	next := nextStyle(m.snap.Draft.Style, delta)
	if err := m.session.SetInput(mockup.FieldStyle, string(next)); err != nil {
		m.actionOutput = &ActionOutput{Message: err.Error(), IsError: true}
		return m, nil
	}
	m.refresh()
	return m, nil
}
