package config

import (
	"slices"
	"strings"
)

// layered holds one key's raw value from each layer; nil means unset.
type layered[V any] struct {
	project *V
	global  *V
}

func pick[S, V any](project, global RawConfig, section func(RawConfig) *S, field func(*S) *V) layered[V] {
	get := func(cfg RawConfig) *V {
		s := section(cfg)
		if s == nil {
			return nil
		}
		return field(s)
	}
	return layered[V]{project: get(project), global: get(global)}
}

func generationSection(c RawConfig) *RawGeneration { return c.Generation }
func historySection(c RawConfig) *RawHistory       { return c.History }
func cloneSection(c RawConfig) *RawClone           { return c.Clone }
func telemetrySection(c RawConfig) *RawTelemetry   { return c.Telemetry }
func serverSection(c RawConfig) *RawServer         { return c.Server }

// ResolveConfig merges project/global configs with built-in defaults.
// Precedence per key: project > global > defaults. Ints are clamped to their
// bounds; enum values outside their choices fall through to the next layer.
func ResolveConfig(project RawConfig, global RawConfig) ResolvedConfig {
	d := DefaultResolvedConfig()

	generationString := func(field func(*RawGeneration) *string) layered[string] {
		return pick(project, global, generationSection, field)
	}
	generationInt := func(field func(*RawGeneration) *int) layered[int] {
		return pick(project, global, generationSection, field)
	}

	return ResolvedConfig{
		SchemaVersion: SchemaVersion,
		Generation: ResolvedGeneration{
			Backend:    resolveChoice(generationString(func(g *RawGeneration) *string { return g.Backend }), d.Generation.Backend, generationBackends),
			TextModel:  resolveString(generationString(func(g *RawGeneration) *string { return g.TextModel }), d.Generation.TextModel),
			ImageModel: resolveString(generationString(func(g *RawGeneration) *string { return g.ImageModel }), d.Generation.ImageModel),
			Command:    resolveString(generationString(func(g *RawGeneration) *string { return g.Command }), d.Generation.Command),
			TimeoutSeconds: resolveIntWithBounds(generationInt(func(g *RawGeneration) *int { return g.TimeoutSeconds }),
				d.Generation.TimeoutSeconds, MinTimeoutSeconds, MaxTimeoutSeconds),
			MaxRetries: resolveIntWithBounds(generationInt(func(g *RawGeneration) *int { return g.MaxRetries }),
				d.Generation.MaxRetries, MinMaxRetries, MaxMaxRetries),
		},
		History: ResolvedHistory{
			Backend: resolveChoice(pick(project, global, historySection, func(h *RawHistory) *string { return h.Backend }),
				d.History.Backend, historyBackends),
			Path: resolveString(pick(project, global, historySection, func(h *RawHistory) *string { return h.Path }),
				d.History.Path),
			PersistDebounceMs: resolveIntWithBounds(pick(project, global, historySection, func(h *RawHistory) *int { return h.PersistDebounceMs }),
				d.History.PersistDebounceMs, MinPersistDebounceMs, MaxPersistDebounceMs),
		},
		Clone: ResolvedClone{
			Capture: resolveBool(pick(project, global, cloneSection, func(c *RawClone) *bool { return c.Capture }),
				d.Clone.Capture),
			BrowserURL: resolveString(pick(project, global, cloneSection, func(c *RawClone) *string { return c.BrowserURL }),
				d.Clone.BrowserURL),
		},
		Telemetry: ResolvedTelemetry{
			OTLPEndpoint: resolveString(pick(project, global, telemetrySection, func(t *RawTelemetry) *string { return t.OTLPEndpoint }),
				d.Telemetry.OTLPEndpoint),
		},
		Server: ResolvedServer{
			Addr: resolveString(pick(project, global, serverSection, func(s *RawServer) *string { return s.Addr }),
				d.Server.Addr),
		},
	}
}

func resolveChoice(v layered[string], defaultVal string, choices []string) string {
	if value, ok := normalizeChoice(v.project, choices); ok {
		return value
	}
	if value, ok := normalizeChoice(v.global, choices); ok {
		return value
	}
	return defaultVal
}

func normalizeChoice(value *string, choices []string) (string, bool) {
	if value == nil {
		return "", false
	}
	v := strings.ToLower(strings.TrimSpace(*value))
	if !slices.Contains(choices, v) {
		return "", false
	}
	return v, true
}

func resolveString(v layered[string], defaultVal string) string {
	if value := normalizeString(v.project); value != "" {
		return value
	}
	if value := normalizeString(v.global); value != "" {
		return value
	}
	return defaultVal
}

func resolveBool(v layered[bool], defaultVal bool) bool {
	if v.project != nil {
		return *v.project
	}
	if v.global != nil {
		return *v.global
	}
	return defaultVal
}

func resolveIntWithBounds(v layered[int], defaultVal int, min int, max int) int {
	if v.project != nil {
		return clampInt(*v.project, min, max)
	}
	if v.global != nil {
		return clampInt(*v.global, min, max)
	}
	return clampInt(defaultVal, min, max)
}

func clampInt(value int, min int, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func normalizeString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
