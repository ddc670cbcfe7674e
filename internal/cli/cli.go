package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }

func Usage() string {
	return `mockingbird: generate UI mockups from descriptions, HTML or live pages

Usage:
  mockingbird                                    open the terminal UI
  mockingbird describe [--style <style>] [--out <dir>] <text...>
  mockingbird remix [--out <dir>] <base.html|-> <style.html|->
  mockingbird clone [--screenshot <file>]... [--out <dir>] [<url>]
  mockingbird history list
  mockingbird history show <id>
  mockingbird history clear
  mockingbird restore [--out <dir>] <id>
  mockingbird templates list
  mockingbird templates generate [--out <dir>] <id>
  mockingbird templates use [--out <dir>] <id> <base|style> <other.html|->
  mockingbird serve [--addr <host:port>]
  mockingbird mcp
  mockingbird config list
  mockingbird config set [--global] <key> <value>
  mockingbird config unset [--global] <key>
  mockingbird version

Styles:
  Minimalist | Neumorphic | Cyberpunk | Glassmorphism | Brutalist |
  "Clean & Corporate" | "Playful & Illustrated" | "Vintage & Retro"

Environment:
  GEMINI_API_KEY           enables the gemini backend (also read from .env)
  MOCKINGBIRD_HOME         state directory (default ~/.mockingbird)
  MOCKINGBIRD_LOG_LEVEL    debug | info | warn | error
`
}

func Run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(args) == 0 {
		return runTUI(ctx)
	}

	switch args[0] {
	case "help", "-h", "--help":
		fmt.Fprintln(os.Stdout, Usage())
		return nil
	case "version", "--version":
		fmt.Fprintf(os.Stdout, "mockingbird %s\n", Version)
		return nil
	case "describe":
		return runDescribe(ctx, args[1:])
	case "remix":
		return runRemix(ctx, args[1:])
	case "clone":
		return runClone(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "restore":
		return runRestore(ctx, args[1:])
	case "templates":
		return runTemplates(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	case "mcp":
		if len(args) != 1 {
			return UsageError{Message: "mcp takes no arguments"}
		}
		return runMCP(ctx)
	case "config":
		return runConfig(args[1:])
	default:
		return UsageError{Message: fmt.Sprintf("unknown command: %q", args[0])}
	}
}
