package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func RenderMainView(m Model) string {
	return renderMainTop(m) + "\n" + renderOutputTabs(m) + "\n" + m.output.View()
}

// renderMainTop is everything above the output tabs. Its height decides how
// much room the output viewport gets.
func renderMainTop(m Model) string {
	header := titleStyle().Render("mockingbird")
	if m.version != "" {
		header += mutedStyle().Render(" " + m.version)
	}
	if m.backend != "" {
		header += mutedStyle().Render("  backend: " + m.backend)
	}

	lines := []string{header, renderModeTabs(m.snap.Mode), ""}

	d := mockup.MustDescriptor(m.snap.Mode)
	focused := m.form.FocusedField(m.snap.Mode)
	for _, fs := range d.Fields {
		label := fs.Label
		if fs.Required {
			label += " *"
		}
		marker := "  "
		if fs.Field == focused {
			marker = "> "
		}
		lines = append(lines, labelStyle(fs.Field == focused).Render(marker+label))
		lines = append(lines, m.form.View(fs.Field))
	}

	if m.snap.Validation != nil {
		lines = append(lines, errorStyle().Render(m.snap.Validation.Message))
	}
	if m.actionOutput != nil {
		style := successStyle()
		if m.actionOutput.IsError {
			style = errorStyle()
		}
		lines = append(lines, style.Render(m.actionOutput.Message))
	}
	return strings.Join(lines, "\n")
}

func renderModeTabs(current mockup.Mode) string {
	parts := make([]string, 0, len(mockup.Modes))
	for i, mode := range mockup.Modes {
		d := mockup.MustDescriptor(mode)
		parts = append(parts, tabStyle(mode == current).Render(fmt.Sprintf("%d %s", i+1, d.Label)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
