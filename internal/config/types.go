package config

const (
	SchemaVersion = 1

	BackendAuto    = "auto"
	BackendGemini  = "gemini"
	BackendCommand = "command"
	BackendLocal   = "local"

	HistoryBackendFile   = "file"
	HistoryBackendSQLite = "sqlite"

	DefaultTextModel         = "gemini-2.5-flash"
	DefaultImageModel        = "imagen-3.0-generate-002"
	DefaultTimeoutSeconds    = 600
	DefaultMaxRetries        = 0
	DefaultPersistDebounceMs = 500
	DefaultServerAddr        = "127.0.0.1:8080"
	DefaultCloneCapture      = false

	MinTimeoutSeconds    = 1
	MaxTimeoutSeconds    = 3600
	MinMaxRetries        = 0
	MaxMaxRetries        = 3
	MinPersistDebounceMs = 0
	MaxPersistDebounceMs = 5000
)

var (
	generationBackends = []string{BackendAuto, BackendGemini, BackendCommand, BackendLocal}
	historyBackends    = []string{HistoryBackendFile, HistoryBackendSQLite}
)

type RawConfig struct {
	SchemaVersion *int           `json:"schemaVersion,omitempty"`
	Generation    *RawGeneration `json:"generation,omitempty"`
	History       *RawHistory    `json:"history,omitempty"`
	Clone         *RawClone      `json:"clone,omitempty"`
	Telemetry     *RawTelemetry  `json:"telemetry,omitempty"`
	Server        *RawServer     `json:"server,omitempty"`
}

type RawGeneration struct {
	Backend        *string `json:"backend,omitempty"`
	TextModel      *string `json:"textModel,omitempty"`
	ImageModel     *string `json:"imageModel,omitempty"`
	Command        *string `json:"command,omitempty"`
	TimeoutSeconds *int    `json:"timeoutSeconds,omitempty"`
	MaxRetries     *int    `json:"maxRetries,omitempty"`
}

type RawHistory struct {
	Backend           *string `json:"backend,omitempty"`
	Path              *string `json:"path,omitempty"`
	PersistDebounceMs *int    `json:"persistDebounceMs,omitempty"`
}

type RawClone struct {
	Capture    *bool   `json:"capture,omitempty"`
	BrowserURL *string `json:"browserURL,omitempty"`
}

type RawTelemetry struct {
	OTLPEndpoint *string `json:"otlpEndpoint,omitempty"`
}

type RawServer struct {
	Addr *string `json:"addr,omitempty"`
}

type ResolvedConfig struct {
	SchemaVersion int                `json:"schemaVersion"`
	Generation    ResolvedGeneration `json:"generation"`
	History       ResolvedHistory    `json:"history"`
	Clone         ResolvedClone      `json:"clone"`
	Telemetry     ResolvedTelemetry  `json:"telemetry"`
	Server        ResolvedServer     `json:"server"`
}

type ResolvedGeneration struct {
	Backend        string `json:"backend"`
	TextModel      string `json:"textModel"`
	ImageModel     string `json:"imageModel"`
	Command        string `json:"command"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	MaxRetries     int    `json:"maxRetries"`
}

type ResolvedHistory struct {
	Backend           string `json:"backend"`
	Path              string `json:"path"`
	PersistDebounceMs int    `json:"persistDebounceMs"`
}

type ResolvedClone struct {
	Capture    bool   `json:"capture"`
	BrowserURL string `json:"browserURL"`
}

type ResolvedTelemetry struct {
	OTLPEndpoint string `json:"otlpEndpoint"`
}

type ResolvedServer struct {
	Addr string `json:"addr"`
}

func DefaultResolvedConfig() ResolvedConfig {
	return ResolvedConfig{
		SchemaVersion: SchemaVersion,
		Generation: ResolvedGeneration{
			Backend:        BackendAuto,
			TextModel:      DefaultTextModel,
			ImageModel:     DefaultImageModel,
			TimeoutSeconds: DefaultTimeoutSeconds,
			MaxRetries:     DefaultMaxRetries,
		},
		History: ResolvedHistory{
			Backend:           HistoryBackendFile,
			PersistDebounceMs: DefaultPersistDebounceMs,
		},
		Clone: ResolvedClone{
			Capture: DefaultCloneCapture,
		},
		Server: ResolvedServer{
			Addr: DefaultServerAddr,
		},
	}
}

// GenerationBackend resolves the "auto" backend: gemini when an API key is
// available, the offline local backend otherwise.
func (c ResolvedConfig) GenerationBackend(apiKey string) string {
	if c.Generation.Backend != BackendAuto {
		return c.Generation.Backend
	}
	if apiKey != "" {
		return BackendGemini
	}
	return BackendLocal
}
