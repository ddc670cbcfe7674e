package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvAPIKeyFallback = "API_KEY"
	EnvLogLevel       = "MOCKINGBIRD_LOG_LEVEL"
)

// LoadDotEnv loads <projectRoot>/.env (or ./.env when projectRoot is empty)
// into the process environment. Variables already set win; a missing file is
// not an error.
func LoadDotEnv(projectRoot string) error {
	path := ".env"
	if projectRoot != "" {
		path = filepath.Join(projectRoot, ".env")
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// APIKey returns the Gemini key from the environment. Secrets never come
// from config files.
func APIKey() string {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(EnvAPIKeyFallback))
}
