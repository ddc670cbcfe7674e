package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jbonatakis/mockingbird/internal/capture"
	"github.com/jbonatakis/mockingbird/internal/config"
	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/generate"
	"github.com/jbonatakis/mockingbird/internal/history"
	"github.com/jbonatakis/mockingbird/internal/telemetry"
)

// app is one wired session: resolved config, the generation backend, the
// history store and everything that needs closing afterwards.
type app struct {
	root     string
	stateDir string
	cfg      config.ResolvedConfig
	backend  string
	logger   *slog.Logger
	session  *engine.Session

	closers []func(ctx context.Context) error
}

func projectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}
	return wd, nil
}

func openApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(root); err != nil {
		logger.Warn("ignoring .env", "error", err)
	}
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	stateDir, err := config.StateDir()
	if err != nil {
		return nil, err
	}

	a := &app{root: root, stateDir: stateDir, cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.close(context.Background())
		}
	}()

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry.OTLPEndpoint, Version)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
	} else {
		a.closers = append(a.closers, shutdown)
	}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	gen, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}

	hist := history.NewManager(store,
		history.WithDebounce(time.Duration(cfg.History.PersistDebounceMs)*time.Millisecond),
		history.WithLogger(logger),
	)
	a.session = engine.NewSession(gen, hist, engine.WithLogger(logger))
	a.session.Init(ctx)
	// The session flushes pending history on close, so it goes first.
	a.closers = append([]func(context.Context) error{func(ctx context.Context) error {
		a.session.Close(ctx)
		return nil
	}}, a.closers...)

	logger.Debug("session ready", "backend", a.backend, "history", cfg.HistoryPath(stateDir), "root", root)
	ok = true
	return a, nil
}

func (a *app) openStore() (history.Store, error) {
	path := a.cfg.HistoryPath(a.stateDir)
	if a.cfg.History.Backend != config.HistoryBackendSQLite {
		return history.NewFileStore(path), nil
	}
	if err := os.MkdirAll(a.stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	store, err := history.OpenSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return store.Close() })
	return store, nil
}

func (a *app) openBackend(ctx context.Context) (generate.Backend, error) {
	apiKey := config.APIKey()
	a.backend = a.cfg.GenerationBackend(apiKey)
	gc := generate.Config{
		Backend:    a.backend,
		APIKey:     apiKey,
		TextModel:  a.cfg.Generation.TextModel,
		ImageModel: a.cfg.Generation.ImageModel,
		Command:    a.cfg.Generation.Command,
		Timeout:    time.Duration(a.cfg.Generation.TimeoutSeconds) * time.Second,
		MaxRetries: a.cfg.Generation.MaxRetries,
		Logger:     a.logger,
	}
	if a.cfg.Clone.Capture {
		browser := capture.New(capture.Config{RemoteURL: a.cfg.Clone.BrowserURL, Logger: a.logger})
		gc.Capturer = browser
		a.closers = append(a.closers, func(context.Context) error { return browser.Close() })
	}
	b, err := generate.NewBackend(ctx, gc)
	if errors.Is(err, generate.ErrMissingAPIKey) {
		return nil, fmt.Errorf("%w, or set generation.backend to local or command", err)
	}
	return b, err
}

// close runs the closers in order and reports the first failure.
func (a *app) close(ctx context.Context) error {
	var first error
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			a.logger.Warn("shutdown", "error", err)
			if first == nil {
				first = err
			}
		}
	}
	a.closers = nil
	return first
}

// withApp opens an app, runs fn and closes it, keeping fn's error first.
func withApp(ctx context.Context, logger *slog.Logger, fn func(a *app) error) error {
	a, err := openApp(ctx, logger)
	if err != nil {
		return err
	}
	runErr := fn(a)
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := a.close(closeCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
