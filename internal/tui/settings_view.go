package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jbonatakis/mockingbird/internal/config"
)

func RenderSettingsView(m Model) string {
	state := m.settings
	lines := []string{
		titleStyle().Render("Settings"),
		mutedStyle().Render("Local > Global > Default. Changes apply the next time mockingbird starts."),
		fmt.Sprintf("Local: %s", layerPath(state.Resolution.Project)),
		fmt.Sprintf("Global: %s", layerPath(state.Resolution.Global)),
		"",
		renderSettingsTable(state),
	}
	if footer := settingsFooter(state); len(footer) > 0 {
		lines = append(lines, "")
		lines = append(lines, footer...)
	}

	content := strings.Join(lines, "\n")
	if m.windowWidth <= 0 || m.windowHeight <= 0 {
		return content
	}
	return lipgloss.Place(m.windowWidth, m.windowHeight-1, lipgloss.Left, lipgloss.Top, content)
}

func layerPath(layer config.SettingsLayer) string {
	if !layer.Available || layer.Path == "" {
		return "N/A"
	}
	return layer.Path
}

type cell struct {
	text  string
	style lipgloss.Style
}

func renderSettingsTable(state SettingsState) string {
	header := lipgloss.NewStyle().Bold(true)
	rows := [][]cell{{
		{"Option", header}, {"Local", header}, {"Global", header}, {"Default", header}, {"Applied", header},
	}}
	for i, option := range state.Options {
		rows = append(rows, settingsRow(state, option, i == state.selectedIndex()))
	}

	widths := make([]int, settingsColumnCount)
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], lipgloss.Width(c.text))
		}
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, len(row))
		for i, c := range row {
			pad := widths[i] - lipgloss.Width(c.text)
			parts[i] = c.style.Render(c.text + strings.Repeat(" ", max(pad, 0)))
		}
		lines = append(lines, strings.Join(parts, "  "))
	}
	return strings.Join(lines, "\n")
}

func settingsRow(state SettingsState, option config.OptionMetadata, selected bool) []cell {
	applied := state.applied(option)
	row := []cell{
		{text: option.DisplayName},
		valueCell(state.Resolution.Project.Values[option.KeyPath]),
		valueCell(state.Resolution.Global.Values[option.KeyPath]),
		valueCell(config.DefaultOptionValue(option)),
		{text: fmt.Sprintf("%s (%s)", formatSettingValue(applied.Value), applied.Source)},
	}

	highlight := lipgloss.NewStyle().Bold(true).Reverse(true)
	switch applied.Source {
	case config.ConfigSourceLocal:
		row[SettingsColumnLocal].style = highlight
	case config.ConfigSourceGlobal:
		row[SettingsColumnGlobal].style = highlight
	default:
		row[SettingsColumnDefault].style = highlight
	}

	if !selected {
		return row
	}
	row[SettingsColumnOption].style = row[SettingsColumnOption].style.Bold(true)
	col := state.column()
	if state.Editing {
		row[col] = cell{text: state.EditValue + "_", style: lipgloss.NewStyle().Bold(true).Underline(true)}
		return row
	}
	row[col].style = row[col].style.Underline(true)
	return row
}

func valueCell(v config.RawOptionValue) cell {
	text := formatSettingValue(v)
	if text == "-" {
		return cell{text: text, style: mutedStyle()}
	}
	return cell{text: text}
}

func formatSettingValue(v config.RawOptionValue) string {
	switch {
	case v.String != nil && *v.String == "":
		return `""`
	case v.Int == nil && v.Bool == nil && v.String == nil:
		return "-"
	default:
		return config.FormatOptionValue(v)
	}
}

func settingsFooter(state SettingsState) []string {
	var lines []string
	if option, ok := state.selectedOption(); ok {
		lines = append(lines, fmt.Sprintf("%s %s: %s", lipgloss.NewStyle().Bold(true).Render("Selected:"), option.DisplayName, describeOption(option)))
	}
	for _, w := range settingsWarnings(state) {
		lines = append(lines, errorStyle().Render(w))
	}
	return lines
}

func describeOption(option config.OptionMetadata) string {
	details := []string{"type: " + string(option.Type)}
	if option.Bounds != nil {
		details = append(details, fmt.Sprintf("bounds: %d-%d", option.Bounds.Min, option.Bounds.Max))
	}
	if len(option.Choices) > 0 {
		details = append(details, "choices: "+strings.Join(option.Choices, "/"))
	}
	return fmt.Sprintf("%s (%s)", option.Description, strings.Join(details, ", "))
}

func settingsWarnings(state SettingsState) []string {
	var lines []string
	if state.Err != nil {
		lines = append(lines, fmt.Sprintf("Settings load warning: %v", state.Err))
	}
	if state.SaveErr != nil {
		lines = append(lines, fmt.Sprintf("Settings error: %v", state.SaveErr))
	}
	for _, w := range state.Resolution.LayerWarnings {
		lines = append(lines, fmt.Sprintf("%s config ignored: %s", w.Source, w.Kind))
	}
	for _, w := range state.Resolution.OptionWarnings {
		line := fmt.Sprintf("%s %s: %s", w.Source, w.KeyPath, w.Kind)
		if w.ClampedInt != nil {
			line += fmt.Sprintf(" (clamped to %d)", *w.ClampedInt)
		}
		lines = append(lines, line)
	}
	return lines
}
