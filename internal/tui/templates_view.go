package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func HandleTemplatesKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	n := len(m.snap.Templates)
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "T":
		m.viewMode = ViewModeMain
	case "up", "k":
		m.templateIndex = clamp(m.templateIndex-1, 0, max(n-1, 0))
	case "down", "j":
		m.templateIndex = clamp(m.templateIndex+1, 0, max(n-1, 0))
	case "enter", "g":
		if n == 0 {
			return m, nil
		}
		tpl := m.snap.Templates[m.templateIndex]
		if tpl.Loading {
			return m, nil
		}
		m.actionOutput = nil
		return m, generateTemplateCmd(m.ctx, m.session, tpl.ID)
	case "b":
		return m.useTemplate(mockup.TargetBase)
	case "s":
		return m.useTemplate(mockup.TargetStyle)
	}
	return m, nil
}

func (m Model) useTemplate(target mockup.TemplateTarget) (Model, tea.Cmd) {
	if len(m.snap.Templates) == 0 {
		return m, nil
	}
	tpl := m.snap.Templates[m.templateIndex]
	err := m.session.UseTemplate(tpl.ID, target)
	switch {
	case errors.Is(err, engine.ErrTemplateNotReady):
		m.actionOutput = &ActionOutput{Message: "Generate the template first (press g).", IsError: true}
		return m, nil
	case errors.Is(err, engine.ErrRunInProgress):
		m.actionOutput = &ActionOutput{Message: "Wait for the current run to finish first.", IsError: true}
		return m, nil
	case err != nil:
		m.actionOutput = &ActionOutput{Message: err.Error(), IsError: true}
		return m, nil
	}

	m.viewMode = ViewModeMain
	m.form.ResetFocus()
	m.refresh()
	m.outputTab = defaultTab(m.snap.Mode)
	m.refresh()
	m.actionOutput = &ActionOutput{Message: fmt.Sprintf("%s placed in the %s HTML field.", tpl.Name, target)}
	return m, nil
}

func RenderTemplatesView(m Model) string {
	lines := []string{titleStyle().Render("Templates"), mutedStyle().Render("g generate, b use as base HTML, s use as style HTML"), ""}
	for i, tpl := range m.snap.Templates {
		status := mutedStyle().Render("not generated")
		switch {
		case tpl.Loading:
			status = spinnerFrames[m.spinnerIndex%len(spinnerFrames)] + " generating"
		case tpl.Error != "":
			status = errorStyle().Render(tpl.Error)
		case tpl.Ready():
			status = successStyle().Render(fmt.Sprintf("ready (%d bytes)", len(tpl.HTML)))
		}
		row := fmt.Sprintf("%-24s %-12s %s", tpl.Name, tpl.Style, status)
		if i == m.templateIndex {
			row = selectedStyle().Render("> ") + row
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	if m.templateIndex < len(m.snap.Templates) {
		tpl := m.snap.Templates[m.templateIndex]
		lines = append(lines, "", lipglossWrap(mutedStyle().Render(tpl.Prompt), max(m.windowWidth-4, 20)))
	}
	if m.actionOutput != nil && m.actionOutput.IsError {
		lines = append(lines, "", errorStyle().Render(m.actionOutput.Message))
	}
	return strings.Join(lines, "\n")
}
