package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func runHistory(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return UsageError{Message: "history requires a subcommand: list | show <id> | clear"}
	}
	switch args[0] {
	case "list":
		if len(args) != 1 {
			return UsageError{Message: "history list takes no arguments"}
		}
		return withApp(ctx, newTextLogger(os.Stderr), func(a *app) error {
			printHistory(os.Stdout, a.session.Snapshot().History)
			return nil
		})
	case "show":
		if len(args) != 2 {
			return UsageError{Message: "history show requires exactly 1 argument: <id>"}
		}
		return withApp(ctx, newTextLogger(os.Stderr), func(a *app) error {
			entry, ok := a.session.Snapshot().History.Find(args[1])
			if !ok {
				return fmt.Errorf("unknown history entry %q", args[1])
			}
			printEntry(os.Stdout, entry)
			return nil
		})
	case "clear":
		if len(args) != 1 {
			return UsageError{Message: "history clear takes no arguments"}
		}
		return withApp(ctx, newTextLogger(os.Stderr), func(a *app) error {
			n := len(a.session.Snapshot().History)
			a.session.ClearHistory(ctx)
			fmt.Fprintf(os.Stdout, "cleared %d history entries\n", n)
			return nil
		})
	default:
		return UsageError{Message: fmt.Sprintf("unknown history subcommand: %q", args[0])}
	}
}

func runRestore(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	out := fs.String("out", "", "write the preview files to this directory")

	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() != 1 {
		return UsageError{Message: "restore requires exactly 1 argument: <id>"}
	}
	id := fs.Arg(0)

	return withApp(ctx, newTextLogger(os.Stderr), func(a *app) error {
		if err := a.session.Restore(id); err != nil {
			if errors.Is(err, engine.ErrEntryNotFound) {
				return fmt.Errorf("unknown history entry %q", id)
			}
			return err
		}
		snap := a.session.Snapshot()
		fmt.Fprintf(os.Stdout, "Restored %s (%s)\n\n", id, snap.Mode)
		printOutput(os.Stdout, snap.Output, snap.Errors, *out == "")
		if *out == "" || snap.Output.Empty() {
			return nil
		}
		return writePreview(os.Stdout, *out, previewTitle(snap.Input(), snap.Output), snap.Output)
	})
}

func printHistory(w io.Writer, log []mockup.HistoryEntry) {
	if len(log) == 0 {
		fmt.Fprintln(w, "no history yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCreated\tMode\tTitle\tDetail")
	for _, e := range log {
		sum := e.Summary()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.CreatedAt.Local().Format(time.DateTime),
			sum.Badge,
			truncate(oneLine(sum.Title), 48),
			sum.Detail,
		)
	}
	_ = tw.Flush()
}

func printEntry(w io.Writer, e mockup.HistoryEntry) {
	sum := e.Summary()
	fmt.Fprintf(w, "ID: %s\n", e.ID)
	fmt.Fprintf(w, "Created: %s\n", e.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Mode: %s\n", sum.Badge)
	fmt.Fprintf(w, "Title: %s\n", sum.Title)
	fmt.Fprintf(w, "Detail: %s\n", sum.Detail)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Input:")
	switch in := e.Input.(type) {
	case mockup.DescriptionInput:
		fmt.Fprintf(w, "- text: %s\n", in.Text)
		fmt.Fprintf(w, "- style: %s\n", in.Style)
	case mockup.ModifyInput:
		fmt.Fprintf(w, "- base html: %d bytes\n", len(in.BaseHTML))
		fmt.Fprintf(w, "- style html: %d bytes\n", len(in.StyleHTML))
	case mockup.CloneInput:
		url := in.URL
		if url == "" {
			url = "(none)"
		}
		fmt.Fprintf(w, "- url: %s\n", url)
		fmt.Fprintf(w, "- screenshots: %d\n", len(in.Screenshots))
	}
	fmt.Fprintln(w)

	printOutput(w, e.Output, e.Errors, true)
}
