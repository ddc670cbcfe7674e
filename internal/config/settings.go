package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/jbonatakis/mockingbird/internal/fsutil"
)

const (
	keyGenerationBackend        = "generation.backend"
	keyGenerationTextModel      = "generation.textModel"
	keyGenerationImageModel     = "generation.imageModel"
	keyGenerationCommand        = "generation.command"
	keyGenerationTimeoutSeconds = "generation.timeoutSeconds"
	keyGenerationMaxRetries     = "generation.maxRetries"
	keyHistoryBackend           = "history.backend"
	keyHistoryPath              = "history.path"
	keyHistoryPersistDebounceMs = "history.persistDebounceMs"
	keyCloneCapture             = "clone.capture"
	keyCloneBrowserURL          = "clone.browserURL"
	keyTelemetryOTLPEndpoint    = "telemetry.otlpEndpoint"
	keyServerAddr               = "server.addr"
)

type RawOptionValue struct {
	Int    *int
	Bool   *bool
	String *string
}

// FormatOptionValue renders whichever value is set, or "" when none is.
func FormatOptionValue(v RawOptionValue) string {
	switch {
	case v.Int != nil:
		return strconv.Itoa(*v.Int)
	case v.Bool != nil:
		return strconv.FormatBool(*v.Bool)
	case v.String != nil:
		return *v.String
	default:
		return ""
	}
}

func (v RawOptionValue) set() int {
	n := 0
	if v.Int != nil {
		n++
	}
	if v.Bool != nil {
		n++
	}
	if v.String != nil {
		n++
	}
	return n
}

// binding connects a key path to its field in the raw and resolved configs.
type binding struct {
	typ      OptionType
	read     func(RawConfig) (RawOptionValue, bool)
	write    func(*RawConfig, RawOptionValue) bool
	resolved func(ResolvedConfig) RawOptionValue
}

func bind[S, V any](
	typ OptionType,
	section func(*RawConfig) **S,
	field func(*S) **V,
	wrap func(*V) RawOptionValue,
	unwrap func(RawOptionValue) *V,
	resolved func(ResolvedConfig) V,
) binding {
	return binding{
		typ: typ,
		read: func(cfg RawConfig) (RawOptionValue, bool) {
			s := *section(&cfg)
			if s == nil || *field(s) == nil {
				return RawOptionValue{}, false
			}
			v := **field(s)
			return wrap(&v), true
		},
		write: func(cfg *RawConfig, value RawOptionValue) bool {
			v := unwrap(value)
			if v == nil {
				return false
			}
			s := section(cfg)
			if *s == nil {
				*s = new(S)
			}
			copied := *v
			*field(*s) = &copied
			return true
		},
		resolved: func(cfg ResolvedConfig) RawOptionValue {
			v := resolved(cfg)
			return wrap(&v)
		},
	}
}

func intValue(v *int) RawOptionValue          { return RawOptionValue{Int: v} }
func boolValue(v *bool) RawOptionValue        { return RawOptionValue{Bool: v} }
func stringValue(v *string) RawOptionValue    { return RawOptionValue{String: v} }
func intOf(v RawOptionValue) *int             { return v.Int }
func boolOf(v RawOptionValue) *bool           { return v.Bool }
func stringOf(v RawOptionValue) *string       { return v.String }
func genSection(c *RawConfig) **RawGeneration { return &c.Generation }
func histSection(c *RawConfig) **RawHistory   { return &c.History }

func genString(field func(*RawGeneration) **string, resolved func(ResolvedConfig) string) binding {
	return bind(OptionTypeString, genSection, field, stringValue, stringOf, resolved)
}

func genInt(field func(*RawGeneration) **int, resolved func(ResolvedConfig) int) binding {
	return bind(OptionTypeInt, genSection, field, intValue, intOf, resolved)
}

var bindings = map[string]binding{
	keyGenerationBackend: genString(func(g *RawGeneration) **string { return &g.Backend },
		func(c ResolvedConfig) string { return c.Generation.Backend }),
	keyGenerationTextModel: genString(func(g *RawGeneration) **string { return &g.TextModel },
		func(c ResolvedConfig) string { return c.Generation.TextModel }),
	keyGenerationImageModel: genString(func(g *RawGeneration) **string { return &g.ImageModel },
		func(c ResolvedConfig) string { return c.Generation.ImageModel }),
	keyGenerationCommand: genString(func(g *RawGeneration) **string { return &g.Command },
		func(c ResolvedConfig) string { return c.Generation.Command }),
	keyGenerationTimeoutSeconds: genInt(func(g *RawGeneration) **int { return &g.TimeoutSeconds },
		func(c ResolvedConfig) int { return c.Generation.TimeoutSeconds }),
	keyGenerationMaxRetries: genInt(func(g *RawGeneration) **int { return &g.MaxRetries },
		func(c ResolvedConfig) int { return c.Generation.MaxRetries }),
	keyHistoryBackend: bind(OptionTypeString, histSection, func(h *RawHistory) **string { return &h.Backend },
		stringValue, stringOf, func(c ResolvedConfig) string { return c.History.Backend }),
	keyHistoryPath: bind(OptionTypeString, histSection, func(h *RawHistory) **string { return &h.Path },
		stringValue, stringOf, func(c ResolvedConfig) string { return c.History.Path }),
	keyHistoryPersistDebounceMs: bind(OptionTypeInt, histSection, func(h *RawHistory) **int { return &h.PersistDebounceMs },
		intValue, intOf, func(c ResolvedConfig) int { return c.History.PersistDebounceMs }),
	keyCloneCapture: bind(OptionTypeBool, func(c *RawConfig) **RawClone { return &c.Clone },
		func(c *RawClone) **bool { return &c.Capture },
		boolValue, boolOf, func(c ResolvedConfig) bool { return c.Clone.Capture }),
	keyCloneBrowserURL: bind(OptionTypeString, func(c *RawConfig) **RawClone { return &c.Clone },
		func(c *RawClone) **string { return &c.BrowserURL },
		stringValue, stringOf, func(c ResolvedConfig) string { return c.Clone.BrowserURL }),
	keyTelemetryOTLPEndpoint: bind(OptionTypeString, func(c *RawConfig) **RawTelemetry { return &c.Telemetry },
		func(t *RawTelemetry) **string { return &t.OTLPEndpoint },
		stringValue, stringOf, func(c ResolvedConfig) string { return c.Telemetry.OTLPEndpoint }),
	keyServerAddr: bind(OptionTypeString, func(c *RawConfig) **RawServer { return &c.Server },
		func(s *RawServer) **string { return &s.Addr },
		stringValue, stringOf, func(c ResolvedConfig) string { return c.Server.Addr }),
}

type LayerOptionValues struct {
	Present bool
	Values  map[string]RawOptionValue
}

// LoadLayerOptionValues reads project and global configs and returns per-option raw values
// (project first, then global).
func LoadLayerOptionValues(projectRoot string) (LayerOptionValues, LayerOptionValues, error) {
	globalCfg, globalPresent, err := LoadGlobalConfig()
	if err != nil {
		return LayerOptionValues{}, LayerOptionValues{}, err
	}
	projectCfg, projectPresent, err := LoadProjectConfig(projectRoot)
	if err != nil {
		return LayerOptionValues{}, LayerOptionValues{}, err
	}

	project := LayerOptionValues{
		Present: projectPresent,
		Values:  RawOptionValues(projectCfg),
	}
	global := LayerOptionValues{
		Present: globalPresent,
		Values:  RawOptionValues(globalCfg),
	}
	return project, global, nil
}

// RawOptionValues extracts known raw option values from a config layer.
func RawOptionValues(cfg RawConfig) map[string]RawOptionValue {
	values := map[string]RawOptionValue{}
	for key, b := range bindings {
		if v, ok := b.read(cfg); ok {
			values[key] = v
		}
	}
	return values
}

// SaveConfigValues writes the provided raw option values to disk.
// The file includes schemaVersion and only set keys; empty layers remove the file.
func SaveConfigValues(path string, values map[string]RawOptionValue) error {
	if path == "" {
		return errors.New("config path is empty")
	}

	cfg, hasValues, err := buildRawConfig(values)
	if err != nil {
		return err
	}
	if !hasValues {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove config %s: %w", path, err)
		}
		return nil
	}

	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	b = append(b, '\n')

	if err := fsutil.WriteFileAtomic(path, b, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func buildRawConfig(values map[string]RawOptionValue) (RawConfig, bool, error) {
	var cfg RawConfig
	hasValues := false

	for key, value := range values {
		switch value.set() {
		case 0:
			continue
		case 1:
		default:
			return RawConfig{}, false, fmt.Errorf("config key %q has more than one value", key)
		}

		b, ok := bindings[key]
		if !ok {
			return RawConfig{}, false, fmt.Errorf("unknown config key %q", key)
		}
		if !b.write(&cfg, value) {
			return RawConfig{}, false, fmt.Errorf("config key %q expects %s value", key, b.typ)
		}
		hasValues = true
	}

	if !hasValues {
		return RawConfig{}, false, nil
	}
	version := SchemaVersion
	cfg.SchemaVersion = &version
	return cfg, true, nil
}
