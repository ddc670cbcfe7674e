package tui

import (
	"errors"
	"maps"
	"slices"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/mockingbird/internal/config"
)

var errDigitsOnly = errors.New("digits only")

// HandleSettingsKey handles key presses in the Settings view.
func HandleSettingsKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.settings.Editing {
		return handleSettingsEditKey(m, msg)
	}

	state := m.settings
	switch msg.String() {
	case "esc", "q":
		m.viewMode = ViewModeMain
		return m, nil
	case "up", "k":
		state.Selected = clamp(state.Selected-1, 0, max(len(state.Options)-1, 0))
	case "down", "j":
		state.Selected = clamp(state.Selected+1, 0, max(len(state.Options)-1, 0))
	case "left", "h":
		state.Column = SettingsColumn(clamp(int(state.column())-1, 0, settingsColumnCount-1))
	case "right", "l":
		state.Column = SettingsColumn(clamp(int(state.column())+1, 0, settingsColumnCount-1))
	case "enter":
		return activateSetting(m, true)
	case " ":
		return activateSetting(m, false)
	case "delete", "backspace":
		return saveSetting(m, nil)
	default:
		return m, nil
	}
	m.settings = state
	return m, nil
}

func handleSettingsEditKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	state := m.settings
	option, _ := state.selectedOption()

	switch msg.String() {
	case "esc":
		state.Editing = false
		state.EditValue = ""
		state.SaveErr = nil
	case "enter":
		return commitSettingEdit(m)
	case "backspace":
		if state.EditValue == "" {
			return saveSetting(m, nil)
		}
		runes := []rune(state.EditValue)
		state.EditValue = string(runes[:len(runes)-1])
		state.SaveErr = nil
	default:
		if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
			return m, nil
		}
		runes := msg.Runes
		if msg.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		if option.Type == config.OptionTypeInt && !allDigits(runes) {
			state.SaveErr = errDigitsOnly
			m.settings = state
			return m, nil
		}
		state.EditValue += string(runes)
		state.SaveErr = nil
	}
	m.settings = state
	return m, nil
}

// activateSetting toggles bools, cycles choices and opens the editor for
// free-form values. Space only ever toggles or cycles.
func activateSetting(m Model, enter bool) (Model, tea.Cmd) {
	state := m.settings
	option, ok := state.selectedOption()
	col := state.column()
	if !ok || !state.editable(col) {
		return m, nil
	}

	current := state.rawValue(option, col)
	if current.Int == nil && current.Bool == nil && current.String == nil {
		current = state.applied(option).Value
	}

	switch {
	case option.Type == config.OptionTypeBool:
		next := current.Bool == nil || !*current.Bool
		return saveSetting(m, &config.RawOptionValue{Bool: &next})
	case len(option.Choices) > 0:
		next := nextChoice(option.Choices, current.String)
		return saveSetting(m, &config.RawOptionValue{String: &next})
	case enter:
		state.Editing = true
		state.SaveErr = nil
		state.EditValue = config.FormatOptionValue(state.rawValue(option, col))
		m.settings = state
	}
	return m, nil
}

func nextChoice(choices []string, current *string) string {
	if current == nil {
		return choices[0]
	}
	idx := slices.Index(choices, *current)
	return choices[(idx+1)%len(choices)]
}

func commitSettingEdit(m Model) (Model, tea.Cmd) {
	state := m.settings
	option, ok := state.selectedOption()
	if !ok {
		return m, nil
	}
	if state.EditValue == "" {
		return saveSetting(m, nil)
	}
	value, err := config.ParseOptionValue(option, state.EditValue)
	if err != nil {
		state.SaveErr = err
		m.settings = state
		return m, nil
	}
	return saveSetting(m, &value)
}

// saveSetting writes value (nil clears it) to the selected layer and reloads
// the resolution. The editor closes whether or not the write succeeded.
func saveSetting(m Model, value *config.RawOptionValue) (Model, tea.Cmd) {
	state := m.settings
	option, ok := state.selectedOption()
	col := state.column()
	if !ok || !state.editable(col) {
		return m, nil
	}
	state.Editing = false
	state.EditValue = ""
	state.SaveErr = nil

	layer, _ := state.layer(col)
	values := maps.Clone(layer.Values)
	if values == nil {
		values = map[string]config.RawOptionValue{}
	}
	if value == nil {
		delete(values, option.KeyPath)
	} else {
		values[option.KeyPath] = *value
	}

	if err := config.SaveConfigValues(layer.Path, values); err != nil {
		state.SaveErr = err
		m.settings = state
		return m, nil
	}
	resolved, err := config.LoadConfig(state.ProjectRoot)
	if err == nil {
		var resolution config.SettingsResolution
		resolution, err = config.ResolveSettings(state.ProjectRoot)
		if err == nil {
			state.Resolution = resolution
			m.config = resolved
		}
	}
	state.SaveErr = err
	state.Err = nil
	m.settings = state
	if err == nil {
		m.log().Info("tui: setting saved", "key", option.KeyPath, "layer", col.source())
	}
	return m, nil
}

func (c SettingsColumn) source() config.ConfigSource {
	if c == SettingsColumnGlobal {
		return config.ConfigSourceGlobal
	}
	return config.ConfigSourceLocal
}

func allDigits(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
