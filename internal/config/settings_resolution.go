package config

type ConfigSource string

const (
	ConfigSourceLocal   ConfigSource = "local"
	ConfigSourceGlobal  ConfigSource = "global"
	ConfigSourceDefault ConfigSource = "default"
)

type LayerWarningKind string

const (
	LayerWarningInvalidJSON       LayerWarningKind = "invalid_json"
	LayerWarningUnsupportedSchema LayerWarningKind = "unsupported_schema"
)

type OptionWarningKind string

const (
	OptionWarningOutOfRange    OptionWarningKind = "out_of_range"
	OptionWarningInvalidChoice OptionWarningKind = "invalid_choice"
)

type LayerWarning struct {
	Source ConfigSource
	Kind   LayerWarningKind
}

type OptionWarning struct {
	Source     ConfigSource
	KeyPath    string
	Kind       OptionWarningKind
	ClampedInt *int
}

type AppliedOption struct {
	Value  RawOptionValue
	Source ConfigSource
}

type SettingsLayer struct {
	Available bool
	Path      string
	Present   bool
	Values    map[string]RawOptionValue
}

type SettingsResolution struct {
	Project        SettingsLayer
	Global         SettingsLayer
	Applied        map[string]AppliedOption
	OptionWarnings []OptionWarning
	LayerWarnings  []LayerWarning
}

// ResolveSettings loads local/global config values and computes applied values with warnings.
func ResolveSettings(projectRoot string) (SettingsResolution, error) {
	var warnings []LayerWarning

	project, projectRaw, err := loadSettingsLayer(ConfigSourceLocal, projectConfigPath(projectRoot), projectRoot != "", &warnings)
	if err != nil {
		return SettingsResolution{}, err
	}
	globalPath, globalAvailable := globalConfigPath()
	global, globalRaw, err := loadSettingsLayer(ConfigSourceGlobal, globalPath, globalAvailable, &warnings)
	if err != nil {
		return SettingsResolution{}, err
	}

	resolvedValues := ResolvedOptionValues(ResolveConfig(projectRaw, globalRaw))
	applied := map[string]AppliedOption{}
	for _, option := range OptionRegistry() {
		key := option.KeyPath
		value, ok := resolvedValues[key]
		if !ok {
			value = DefaultOptionValue(option)
		}
		applied[key] = AppliedOption{
			Value:  value,
			Source: appliedSource(option, project.Values[key], global.Values[key]),
		}
	}

	return SettingsResolution{
		Project: project,
		Global:  global,
		Applied: applied,
		OptionWarnings: append(
			collectOptionWarnings(ConfigSourceLocal, project.Values),
			collectOptionWarnings(ConfigSourceGlobal, global.Values)...,
		),
		LayerWarnings: warnings,
	}, nil
}

func loadSettingsLayer(source ConfigSource, path string, available bool, warnings *[]LayerWarning) (SettingsLayer, RawConfig, error) {
	layer := SettingsLayer{
		Available: available,
		Path:      path,
		Values:    map[string]RawOptionValue{},
	}
	if !available {
		return layer, RawConfig{}, nil
	}

	cfg, present, warningKind, err := loadConfigFileDetailed(path)
	if err != nil {
		return SettingsLayer{}, RawConfig{}, err
	}
	if warningKind != nil {
		*warnings = append(*warnings, LayerWarning{Source: source, Kind: *warningKind})
		return layer, RawConfig{}, nil
	}
	if present {
		layer.Present = true
		layer.Values = RawOptionValues(cfg)
	}
	return layer, cfg, nil
}

// appliedSource names the layer a value came from. A layer holding an invalid
// choice does not count, since resolution skipped it.
func appliedSource(option OptionMetadata, project, global RawOptionValue) ConfigSource {
	usable := func(v RawOptionValue) bool {
		if v.set() == 0 {
			return false
		}
		if v.String != nil && len(option.Choices) > 0 {
			_, ok := normalizeChoice(v.String, option.Choices)
			return ok
		}
		if v.String != nil {
			return normalizeString(v.String) != ""
		}
		return true
	}
	switch {
	case usable(project):
		return ConfigSourceLocal
	case usable(global):
		return ConfigSourceGlobal
	default:
		return ConfigSourceDefault
	}
}

func ResolvedOptionValues(cfg ResolvedConfig) map[string]RawOptionValue {
	values := make(map[string]RawOptionValue, len(bindings))
	for key, b := range bindings {
		values[key] = b.resolved(cfg)
	}
	return values
}

// DefaultOptionValue is the built-in value of option as a raw value.
func DefaultOptionValue(option OptionMetadata) RawOptionValue {
	switch option.Type {
	case OptionTypeInt:
		value := option.DefaultInt
		return RawOptionValue{Int: &value}
	case OptionTypeString:
		value := option.DefaultString
		return RawOptionValue{String: &value}
	default:
		value := option.DefaultBool
		return RawOptionValue{Bool: &value}
	}
}

func collectOptionWarnings(source ConfigSource, values map[string]RawOptionValue) []OptionWarning {
	warnings := []OptionWarning{}
	for _, option := range OptionRegistry() {
		value, ok := values[option.KeyPath]
		if !ok {
			continue
		}
		switch {
		case value.Int != nil:
			clamped := clampIntForKey(option.KeyPath, *value.Int)
			if clamped != *value.Int {
				warnings = append(warnings, OptionWarning{
					Source:     source,
					KeyPath:    option.KeyPath,
					Kind:       OptionWarningOutOfRange,
					ClampedInt: &clamped,
				})
			}
		case value.String != nil && len(option.Choices) > 0:
			if _, ok := normalizeChoice(value.String, option.Choices); !ok {
				warnings = append(warnings, OptionWarning{
					Source:  source,
					KeyPath: option.KeyPath,
					Kind:    OptionWarningInvalidChoice,
				})
			}
		}
	}
	return warnings
}

func clampIntForKey(key string, value int) int {
	option, ok := LookupOption(key)
	if !ok || option.Bounds == nil {
		return value
	}
	return clampInt(value, option.Bounds.Min, option.Bounds.Max)
}
