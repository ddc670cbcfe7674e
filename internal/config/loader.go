package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	dirName  = ".mockingbird"
	fileName = "config.json"
)

var userHomeDir = os.UserHomeDir

func LoadGlobalConfig() (RawConfig, bool, error) {
	path, ok := globalConfigPath()
	if !ok {
		return RawConfig{}, false, nil
	}
	return loadConfigFile(path)
}

func LoadProjectConfig(projectRoot string) (RawConfig, bool, error) {
	if projectRoot == "" {
		return RawConfig{}, false, nil
	}
	return loadConfigFile(projectConfigPath(projectRoot))
}

// LoadConfig reads global and project configs and returns the resolved config.
// Precedence per key: project > global > defaults.
func LoadConfig(projectRoot string) (ResolvedConfig, error) {
	globalCfg, _, err := LoadGlobalConfig()
	if err != nil {
		return ResolvedConfig{}, err
	}
	projectCfg, _, err := LoadProjectConfig(projectRoot)
	if err != nil {
		return ResolvedConfig{}, err
	}
	return ResolveConfig(projectCfg, globalCfg), nil
}

func loadConfigFile(path string) (RawConfig, bool, error) {
	cfg, present, warning, err := loadConfigFileDetailed(path)
	if err != nil || warning != nil {
		return RawConfig{}, false, err
	}
	return cfg, present, nil
}

// loadConfigFileDetailed reports why a layer was ignored. Only I/O errors
// other than a missing file are returned as errors.
func loadConfigFileDetailed(path string) (RawConfig, bool, *LayerWarningKind, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, false, nil, nil
		}
		return RawConfig{}, false, nil, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))

	var cfg RawConfig
	if err := dec.Decode(&cfg); err != nil {
		return RawConfig{}, false, warningPtr(LayerWarningInvalidJSON), nil
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return RawConfig{}, false, warningPtr(LayerWarningInvalidJSON), nil
	}
	if !isSupportedSchemaVersion(cfg.SchemaVersion) {
		return RawConfig{}, false, warningPtr(LayerWarningUnsupportedSchema), nil
	}

	return cfg, true, nil, nil
}

func isSupportedSchemaVersion(version *int) bool {
	if version == nil {
		return true
	}
	return *version == SchemaVersion
}

func projectConfigPath(projectRoot string) string {
	if projectRoot == "" {
		return ""
	}
	return filepath.Join(projectRoot, dirName, fileName)
}

func globalConfigPath() (string, bool) {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return "", false
	}
	return filepath.Join(home, dirName, fileName), true
}

func warningPtr(kind LayerWarningKind) *LayerWarningKind {
	return &kind
}

// StateDir is where history, logs and other per-user state live:
// $MOCKINGBIRD_HOME when set, otherwise ~/.mockingbird.
func StateDir() (string, error) {
	if dir := os.Getenv("MOCKINGBIRD_HOME"); dir != "" {
		return dir, nil
	}
	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if home == "" {
		return "", errors.New("resolve home directory: empty path")
	}
	return filepath.Join(home, dirName), nil
}

// HistoryPath returns the configured history location, or the backend's
// default file under stateDir.
func (c ResolvedConfig) HistoryPath(stateDir string) string {
	if c.History.Path != "" {
		return c.History.Path
	}
	if c.History.Backend == HistoryBackendSQLite {
		return filepath.Join(stateDir, "history.db")
	}
	return filepath.Join(stateDir, "history.json")
}

// LayerPath returns the config file backing a writable layer.
func LayerPath(source ConfigSource, projectRoot string) (string, error) {
	switch source {
	case ConfigSourceLocal:
		if projectRoot == "" {
			return "", errors.New("project root is empty")
		}
		return projectConfigPath(projectRoot), nil
	case ConfigSourceGlobal:
		path, ok := globalConfigPath()
		if !ok {
			return "", errors.New("home directory unavailable")
		}
		return path, nil
	default:
		return "", fmt.Errorf("no config file for source %q", source)
	}
}
