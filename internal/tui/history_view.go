package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func HandleHistoryKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	n := len(m.snap.History)
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "H":
		m.viewMode = ViewModeMain
	case "up", "k":
		m.historyIndex = clamp(m.historyIndex-1, 0, max(n-1, 0))
	case "down", "j":
		m.historyIndex = clamp(m.historyIndex+1, 0, max(n-1, 0))
	case "enter":
		if n == 0 {
			return m, nil
		}
		entry := m.snap.History[m.historyIndex]
		if err := m.session.Restore(entry.ID); err != nil {
			m.actionOutput = &ActionOutput{Message: fmt.Sprintf("Restore failed: %v", err), IsError: true}
			return m, nil
		}
		m.viewMode = ViewModeMain
		m.form.ResetFocus()
		m.refresh()
		m.outputTab = defaultTab(m.snap.Mode)
		m.refresh()
		m.actionOutput = &ActionOutput{Message: "Restored " + entry.Summary().Title}
	case "D":
		m.session.ClearHistory(m.ctx)
		m.historyIndex = 0
		m.refresh()
		m.actionOutput = &ActionOutput{Message: "History cleared."}
	}
	return m, nil
}

func RenderHistoryView(m Model) string {
	lines := []string{titleStyle().Render("History"), ""}
	if len(m.snap.History) == 0 {
		lines = append(lines, mutedStyle().Render("No history yet. Generated UIs will appear here."))
		return strings.Join(lines, "\n")
	}

	width := max(m.windowWidth-4, 20)
	for i, entry := range m.snap.History {
		sum := entry.Summary()
		title := truncate(strings.Join(strings.Fields(sum.Title), " "), width-14)
		row := fmt.Sprintf("%-9s %s", "["+sum.Badge+"]", title)
		detail := mutedStyle().Render(fmt.Sprintf("          %s  %s", entry.CreatedAt.Local().Format(time.DateTime), sum.Detail))
		if i == m.historyIndex {
			row = selectedStyle().Render("> " + row)
		} else {
			row = "  " + row
		}
		lines = append(lines, row, detail)
	}

	if m.historyIndex < len(m.snap.History) {
		body := m.snap.History[m.historyIndex].Summary().Body
		lines = append(lines, "", mutedStyle().Render(truncate(strings.Join(strings.Fields(body), " "), width*3)))
	}
	if m.actionOutput != nil && m.actionOutput.IsError {
		lines = append(lines, errorStyle().Render(m.actionOutput.Message))
	}

	content := strings.Join(lines, "\n")
	if m.windowHeight > 1 {
		return lipgloss.NewStyle().MaxHeight(m.windowHeight - 1).Render(content)
	}
	return content
}
