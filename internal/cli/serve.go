package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jbonatakis/mockingbird/internal/config"
	"github.com/jbonatakis/mockingbird/internal/mcpserver"
	"github.com/jbonatakis/mockingbird/internal/server"
	"github.com/jbonatakis/mockingbird/internal/tui"
)

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	addr := fs.String("addr", "", "listen address (default server.addr)")

	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() != 0 {
		return UsageError{Message: "serve takes only flags (no positional args)"}
	}

	logger := newTextLogger(os.Stderr)
	return withApp(ctx, logger, func(a *app) error {
		listen := *addr
		if listen == "" {
			listen = a.cfg.Server.Addr
		}
		srv := server.New(a.session, server.WithLogger(logger))
		fmt.Fprintf(os.Stderr, "mockingbird %s listening on http://%s (backend %s)\n", Version, listen, a.backend)
		return srv.ListenAndServe(ctx, listen)
	})
}

// runMCP serves MCP over stdin/stdout, so logs go to stderr as JSON.
func runMCP(ctx context.Context) error {
	logger := newJSONLogger(os.Stderr)
	return withApp(ctx, logger, func(a *app) error {
		return mcpserver.New(a.session, Version, logger).ServeStdio(ctx, os.Stdin, os.Stdout)
	})
}

// runTUI hands the terminal to the UI and logs to a file under the state
// directory instead.
func runTUI(ctx context.Context) error {
	stateDir, err := config.StateDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(stateDir, "mockingbird.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger := newJSONLogger(logFile)
	return withApp(ctx, logger, func(a *app) error {
		return tui.Start(ctx, a.session, tui.Options{
			ProjectRoot: a.root,
			Backend:     a.backend,
			Version:     Version,
			Logger:      logger,
		})
	})
}
