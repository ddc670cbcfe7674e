package tui

import "github.com/jbonatakis/mockingbird/internal/config"

type SettingsColumn int

const (
	SettingsColumnOption SettingsColumn = iota
	SettingsColumnLocal
	SettingsColumnGlobal
	SettingsColumnDefault
	SettingsColumnApplied
)

const settingsColumnCount = int(SettingsColumnApplied) + 1

// SettingsState backs the settings table. Edits are written straight to the
// selected layer's config file; the running session keeps the config it was
// started with.
type SettingsState struct {
	ProjectRoot string
	Options     []config.OptionMetadata
	Resolution  config.SettingsResolution
	Selected    int
	Column      SettingsColumn
	Editing     bool
	EditValue   string
	SaveErr     error
	Err         error
}

func NewSettingsState(projectRoot string, resolved config.ResolvedConfig) SettingsState {
	resolution, err := config.ResolveSettings(projectRoot)
	if err != nil {
		resolution = resolutionFromConfig(resolved)
	}
	return SettingsState{
		ProjectRoot: projectRoot,
		Options:     config.OptionRegistry(),
		Resolution:  resolution,
		Column:      SettingsColumnLocal,
		Err:         err,
	}
}

// resolutionFromConfig is the fallback when the layers cannot be read: every
// option shows its resolved value as a default.
func resolutionFromConfig(resolved config.ResolvedConfig) config.SettingsResolution {
	values := config.ResolvedOptionValues(resolved)
	applied := map[string]config.AppliedOption{}
	for _, option := range config.OptionRegistry() {
		value, ok := values[option.KeyPath]
		if !ok {
			value = config.DefaultOptionValue(option)
		}
		applied[option.KeyPath] = config.AppliedOption{Value: value, Source: config.ConfigSourceDefault}
	}
	return config.SettingsResolution{
		Project: config.SettingsLayer{Values: map[string]config.RawOptionValue{}},
		Global:  config.SettingsLayer{Values: map[string]config.RawOptionValue{}},
		Applied: applied,
	}
}

func (s SettingsState) column() SettingsColumn {
	return SettingsColumn(clamp(int(s.Column), 0, settingsColumnCount-1))
}

func (s SettingsState) selectedIndex() int {
	return clamp(s.Selected, 0, max(len(s.Options)-1, 0))
}

func (s SettingsState) selectedOption() (config.OptionMetadata, bool) {
	if len(s.Options) == 0 {
		return config.OptionMetadata{}, false
	}
	return s.Options[s.selectedIndex()], true
}

func (s SettingsState) layer(col SettingsColumn) (config.SettingsLayer, bool) {
	switch col {
	case SettingsColumnLocal:
		return s.Resolution.Project, true
	case SettingsColumnGlobal:
		return s.Resolution.Global, true
	default:
		return config.SettingsLayer{}, false
	}
}

func (s SettingsState) editable(col SettingsColumn) bool {
	layer, ok := s.layer(col)
	return ok && layer.Available && layer.Path != ""
}

func (s SettingsState) rawValue(option config.OptionMetadata, col SettingsColumn) config.RawOptionValue {
	layer, _ := s.layer(col)
	return layer.Values[option.KeyPath]
}

func (s SettingsState) applied(option config.OptionMetadata) config.AppliedOption {
	if applied, ok := s.Resolution.Applied[option.KeyPath]; ok {
		return applied
	}
	return config.AppliedOption{Value: config.DefaultOptionValue(option), Source: config.ConfigSourceDefault}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
