package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type OptionType string

const (
	OptionTypeBool   OptionType = "bool"
	OptionTypeInt    OptionType = "int"
	OptionTypeString OptionType = "string"
)

type IntBounds struct {
	Min int
	Max int
}

type OptionMetadata struct {
	KeyPath       string
	DisplayName   string
	Type          OptionType
	DefaultInt    int
	DefaultBool   bool
	DefaultString string
	Bounds        *IntBounds
	// Choices restricts a string option to a fixed set; empty means free text.
	Choices     []string
	Description string
}

// OptionRegistry returns the known config options in display order.
func OptionRegistry() []OptionMetadata {
	defaults := DefaultResolvedConfig()

	return []OptionMetadata{
		newChoiceOption(keyGenerationBackend, "Generation Backend", defaults.Generation.Backend, generationBackends,
			"Backend for generation calls; auto picks gemini when an API key is set"),
		newStringOption(keyGenerationTextModel, "Text Model", defaults.Generation.TextModel,
			"Model used for prompt enhancement, HTML and cloning"),
		newStringOption(keyGenerationImageModel, "Image Model", defaults.Generation.ImageModel,
			"Model used for preview images"),
		newStringOption(keyGenerationCommand, "Generation Command", defaults.Generation.Command,
			"Shell command run by the command backend"),
		newIntOption(keyGenerationTimeoutSeconds, "Generation Timeout (seconds)", defaults.Generation.TimeoutSeconds,
			MinTimeoutSeconds, MaxTimeoutSeconds, "Per-call timeout for generation requests"),
		newIntOption(keyGenerationMaxRetries, "Generation Retries", defaults.Generation.MaxRetries,
			MinMaxRetries, MaxMaxRetries, "Extra attempts for a failed generation call"),
		newChoiceOption(keyHistoryBackend, "History Backend", defaults.History.Backend, historyBackends,
			"Where run history is persisted"),
		newStringOption(keyHistoryPath, "History Path", defaults.History.Path,
			"History location; empty uses the state directory"),
		newIntOption(keyHistoryPersistDebounceMs, "History Write Delay (ms)", defaults.History.PersistDebounceMs,
			MinPersistDebounceMs, MaxPersistDebounceMs, "Delay before history changes are written"),
		newBoolOption(keyCloneCapture, "Clone Page Capture", defaults.Clone.Capture,
			"Capture cloned URLs in a headless browser"),
		newStringOption(keyCloneBrowserURL, "Clone Browser URL", defaults.Clone.BrowserURL,
			"Remote DevTools URL; empty launches a local browser"),
		newStringOption(keyTelemetryOTLPEndpoint, "OTLP Endpoint", defaults.Telemetry.OTLPEndpoint,
			"OpenTelemetry metrics endpoint; empty disables export"),
		newStringOption(keyServerAddr, "Server Address", defaults.Server.Addr,
			"Listen address for mockingbird serve"),
	}
}

// LookupOption finds a registered option by key path.
func LookupOption(keyPath string) (OptionMetadata, bool) {
	for _, option := range OptionRegistry() {
		if option.KeyPath == keyPath {
			return option, true
		}
	}
	return OptionMetadata{}, false
}

// ParseOptionValue converts user text into a value for option, enforcing
// its type, bounds and choices.
func ParseOptionValue(option OptionMetadata, text string) (RawOptionValue, error) {
	text = strings.TrimSpace(text)
	switch option.Type {
	case OptionTypeInt:
		v, err := strconv.Atoi(text)
		if err != nil {
			return RawOptionValue{}, fmt.Errorf("%s expects a number", option.KeyPath)
		}
		if b := option.Bounds; b != nil && (v < b.Min || v > b.Max) {
			return RawOptionValue{}, fmt.Errorf("value must be between %d and %d", b.Min, b.Max)
		}
		return RawOptionValue{Int: &v}, nil
	case OptionTypeBool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return RawOptionValue{}, fmt.Errorf("%s expects true or false", option.KeyPath)
		}
		return RawOptionValue{Bool: &v}, nil
	case OptionTypeString:
		if len(option.Choices) > 0 {
			text = strings.ToLower(text)
			if !slices.Contains(option.Choices, text) {
				return RawOptionValue{}, fmt.Errorf("%s must be one of %s", option.KeyPath, strings.Join(option.Choices, ", "))
			}
		}
		if text == "" {
			return RawOptionValue{}, fmt.Errorf("%s expects a value", option.KeyPath)
		}
		return RawOptionValue{String: &text}, nil
	default:
		return RawOptionValue{}, fmt.Errorf("unsupported option type %q", option.Type)
	}
}

func newIntOption(keyPath string, displayName string, defaultValue int, min int, max int, description string) OptionMetadata {
	return OptionMetadata{
		KeyPath:     keyPath,
		DisplayName: displayName,
		Type:        OptionTypeInt,
		DefaultInt:  defaultValue,
		Bounds: &IntBounds{
			Min: min,
			Max: max,
		},
		Description: description,
	}
}

func newBoolOption(keyPath string, displayName string, defaultValue bool, description string) OptionMetadata {
	return OptionMetadata{
		KeyPath:     keyPath,
		DisplayName: displayName,
		Type:        OptionTypeBool,
		DefaultBool: defaultValue,
		Description: description,
	}
}

func newStringOption(keyPath string, displayName string, defaultValue string, description string) OptionMetadata {
	return OptionMetadata{
		KeyPath:       keyPath,
		DisplayName:   displayName,
		Type:          OptionTypeString,
		DefaultString: defaultValue,
		Description:   description,
	}
}

func newChoiceOption(keyPath string, displayName string, defaultValue string, choices []string, description string) OptionMetadata {
	option := newStringOption(keyPath, displayName, defaultValue, description)
	option.Choices = choices
	return option
}
