package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

func RenderBottomBar(m Model) string {
	left := strings.Join(actionHints(m), " ")
	if m.snap.Running {
		frame := spinnerFrames[m.spinnerIndex%len(spinnerFrames)]
		left = fmt.Sprintf("%s | %s %s", left, frame, mockup.MustDescriptor(m.snap.Mode).Action)
	}

	right := fmt.Sprintf("%s history:%d", m.snap.State, len(m.snap.History))
	width := m.windowWidth
	if width > 0 {
		width = max(width-2, 0)
	}
	return lipgloss.NewStyle().Reverse(true).Padding(0, 1).Render(layoutBar(left, right, width))
}

func actionHints(m Model) []string {
	switch m.viewMode {
	case ViewModeHistory:
		return []string{"[enter]restore", "[D]clear", "[esc]back"}
	case ViewModeTemplates:
		return []string{"[g]enerate", "[b]ase", "[s]tyle", "[esc]back"}
	case ViewModeSettings:
		if m.settings.Editing {
			return []string{"[enter]save", "[esc]cancel"}
		}
		return []string{"[enter]edit", "[space]toggle", "[del]clear", "[esc]back"}
	}
	if m.editing {
		return []string{"[esc]done", "[ctrl+r]run"}
	}
	hints := []string{"[1-3]mode", "[tab]field", "[enter]edit", "[r]un", "[o]utput"}
	if !m.snap.Output.Empty() {
		hints = append(hints, "[w]rite")
	}
	return append(hints, "[H]istory", "[T]emplates", "[,]settings", "[q]uit")
}

// layoutBar pins right to the end of a width-wide line, truncating left
// first when both do not fit.
func layoutBar(left string, right string, width int) string {
	if width <= 0 {
		return left + " " + right
	}
	rightWidth := lipgloss.Width(right)
	gap := width - lipgloss.Width(left) - rightWidth
	if gap < 1 {
		availableLeft := width - rightWidth - 1
		if availableLeft < 0 {
			return truncate(right, width)
		}
		left = truncate(left, availableLeft)
		gap = max(width-lipgloss.Width(left)-rightWidth, 1)
	}
	return truncate(left+strings.Repeat(" ", gap)+right, width)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
