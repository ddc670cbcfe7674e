// Package generate implements the external generation calls: prompt
// enhancement, image and HTML synthesis, restyling and cloning.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

const (
	BackendGemini  = "gemini"
	BackendCommand = "command"
	BackendLocal   = "local"

	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "imagen-3.0-generate-002"
	DefaultTimeout    = 10 * time.Minute
)

// Backend is one way of fulfilling generation calls.
type Backend interface {
	Name() string
	EnhancePrompt(ctx context.Context, text string, style mockup.VisualStyle) (string, error)
	GenerateImage(ctx context.Context, prompt string) (mockup.Image, error)
	GenerateHTML(ctx context.Context, prompt string) (string, error)
	RestyleHTML(ctx context.Context, baseHTML, styleHTML string) (string, error)
	CloneURL(ctx context.Context, url string, screenshots []mockup.Image) (mockup.CloneResult, error)
	Clone(ctx context.Context, req CloneRequest) (mockup.CloneResult, error)
}

type Config struct {
	Backend    string
	APIKey     string
	TextModel  string
	ImageModel string
	// Command is the shell command run by the command backend.
	Command    string
	Timeout    time.Duration
	MaxRetries int
	Capturer   Capturer
	Logger     *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.TextModel == "" {
		c.TextModel = DefaultTextModel
	}
	if c.ImageModel == "" {
		c.ImageModel = DefaultImageModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

type ErrUnsupportedBackend struct {
	Backend string
}

func (e ErrUnsupportedBackend) Error() string {
	return fmt.Sprintf("unsupported generation backend %q (expected %s, %s or %s)", e.Backend, BackendGemini, BackendCommand, BackendLocal)
}

// NewBackend builds the backend named by cfg.Backend and layers the retry
// and page-capture policies on top of it.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	cfg = cfg.withDefaults()

	var (
		b   Backend
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendGemini:
		b, err = NewGemini(ctx, cfg)
	case BackendCommand:
		b, err = NewCommand(cfg)
	case BackendLocal, "":
		b = NewLocal()
	default:
		return nil, ErrUnsupportedBackend{Backend: cfg.Backend}
	}
	if err != nil {
		return nil, err
	}

	if cfg.MaxRetries > 0 {
		b = WithRetries(b, cfg.MaxRetries, cfg.Logger)
	}
	if cfg.Capturer != nil {
		b = WithCapture(b, cfg.Capturer, cfg.Logger)
	}
	cfg.Logger.Debug("generation backend ready", "backend", b.Name(), "retries", cfg.MaxRetries, "capture", cfg.Capturer != nil)
	return b, nil
}
