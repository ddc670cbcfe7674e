package config

import "testing"

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestResolveConfigDefaults(t *testing.T) {
	got := ResolveConfig(RawConfig{}, RawConfig{})
	want := DefaultResolvedConfig()
	if got != want {
		t.Fatalf("ResolveConfig(empty) = %+v, want %+v", got, want)
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	project := RawConfig{
		Generation: &RawGeneration{TextModel: strPtr("project-model")},
		History:    &RawHistory{Backend: strPtr("SQLite")},
	}
	global := RawConfig{
		Generation: &RawGeneration{TextModel: strPtr("global-model"), ImageModel: strPtr("global-image")},
		Clone:      &RawClone{Capture: boolPtr(true)},
		Server:     &RawServer{Addr: strPtr(":9000")},
	}

	got := ResolveConfig(project, global)
	if got.Generation.TextModel != "project-model" {
		t.Fatalf("text model = %q, want project value", got.Generation.TextModel)
	}
	if got.Generation.ImageModel != "global-image" {
		t.Fatalf("image model = %q, want global value", got.Generation.ImageModel)
	}
	if got.History.Backend != HistoryBackendSQLite {
		t.Fatalf("history backend = %q, want normalized sqlite", got.History.Backend)
	}
	if !got.Clone.Capture {
		t.Fatalf("clone capture should come from global")
	}
	if got.Server.Addr != ":9000" {
		t.Fatalf("server addr = %q", got.Server.Addr)
	}
}

func TestResolveConfigClampsAndSkipsInvalidChoices(t *testing.T) {
	project := RawConfig{
		Generation: &RawGeneration{Backend: strPtr("openai"), MaxRetries: intPtr(9)},
		History:    &RawHistory{PersistDebounceMs: intPtr(-5)},
	}
	global := RawConfig{
		Generation: &RawGeneration{Backend: strPtr("command"), TimeoutSeconds: intPtr(0)},
	}

	got := ResolveConfig(project, global)
	if got.Generation.Backend != BackendCommand {
		t.Fatalf("backend = %q, want fallthrough to global command", got.Generation.Backend)
	}
	if got.Generation.MaxRetries != MaxMaxRetries {
		t.Fatalf("max retries = %d, want clamp to %d", got.Generation.MaxRetries, MaxMaxRetries)
	}
	if got.Generation.TimeoutSeconds != MinTimeoutSeconds {
		t.Fatalf("timeout = %d, want clamp to %d", got.Generation.TimeoutSeconds, MinTimeoutSeconds)
	}
	if got.History.PersistDebounceMs != MinPersistDebounceMs {
		t.Fatalf("debounce = %d, want %d", got.History.PersistDebounceMs, MinPersistDebounceMs)
	}
}

func TestGenerationBackend(t *testing.T) {
	cfg := DefaultResolvedConfig()
	if got := cfg.GenerationBackend(""); got != BackendLocal {
		t.Fatalf("auto without key = %q, want local", got)
	}
	if got := cfg.GenerationBackend("k"); got != BackendGemini {
		t.Fatalf("auto with key = %q, want gemini", got)
	}
	cfg.Generation.Backend = BackendCommand
	if got := cfg.GenerationBackend("k"); got != BackendCommand {
		t.Fatalf("explicit backend = %q, want command", got)
	}
}

func TestHistoryPath(t *testing.T) {
	cfg := DefaultResolvedConfig()
	if got := cfg.HistoryPath("/state"); got != "/state/history.json" {
		t.Fatalf("file path = %q", got)
	}
	cfg.History.Backend = HistoryBackendSQLite
	if got := cfg.HistoryPath("/state"); got != "/state/history.db" {
		t.Fatalf("sqlite path = %q", got)
	}
	cfg.History.Path = "/custom/h.db"
	if got := cfg.HistoryPath("/state"); got != "/custom/h.db" {
		t.Fatalf("explicit path = %q", got)
	}
}
