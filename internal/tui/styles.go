package tui

import "github.com/charmbracelet/lipgloss"

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
}

func mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
}

func selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
}

func errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
}

func successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
}

func labelStyle(focused bool) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if focused {
		style = style.Foreground(lipgloss.Color("214"))
	}
	return style
}

// tabStyle renders one tab of a tab strip.
func tabStyle(active bool) lipgloss.Style {
	style := lipgloss.NewStyle().Padding(0, 1)
	if active {
		return style.Bold(true).Reverse(true)
	}
	return style.Foreground(lipgloss.Color("245"))
}

func lipglossWrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
