package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func runTemplates(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return UsageError{Message: "templates requires a subcommand: list | generate <id> | use <id> <base|style> <other.html>"}
	}
	switch args[0] {
	case "list":
		if len(args) != 1 {
			return UsageError{Message: "templates list takes no arguments"}
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tName\tStyle")
		for _, t := range mockup.Templates() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Style)
		}
		_ = tw.Flush()
		return nil
	case "generate":
		return runTemplateGenerate(ctx, args[1:])
	case "use":
		return runTemplateUse(ctx, args[1:])
	default:
		return UsageError{Message: fmt.Sprintf("unknown templates subcommand: %q", args[0])}
	}
}

func runTemplateGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("templates generate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	out := fs.String("out", "", "write index.html to this directory")

	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() != 1 {
		return UsageError{Message: "templates generate requires exactly 1 argument: <id>"}
	}
	tpl, ok := mockup.TemplateByID(fs.Arg(0))
	if !ok {
		return fmt.Errorf("unknown template %q (see `mockingbird templates list`)", fs.Arg(0))
	}

	return withApp(ctx, newTextLogger(os.Stderr), func(a *app) error {
		html, err := generateTemplate(ctx, a, tpl)
		if err != nil {
			return err
		}
		if *out == "" {
			fmt.Fprintln(os.Stdout, html)
			return nil
		}
		return writePreview(os.Stdout, *out, tpl.Name, mockup.RunOutput{HTML: &html})
	})
}

// runTemplateUse renders a template into one remix input, reads the other
// input from a file and runs the remix.
func runTemplateUse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("templates use", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	out := fs.String("out", "", "write the preview files to this directory")

	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() != 3 {
		return UsageError{Message: "templates use requires exactly 3 arguments: <id> <base|style> <other.html>"}
	}
	tpl, ok := mockup.TemplateByID(fs.Arg(0))
	if !ok {
		return fmt.Errorf("unknown template %q (see `mockingbird templates list`)", fs.Arg(0))
	}
	target, err := mockup.ParseTemplateTarget(fs.Arg(1))
	if err != nil {
		return UsageError{Message: err.Error()}
	}
	other, err := readHTML(fs.Arg(2))
	if err != nil {
		return err
	}
	otherField := mockup.FieldStyleHTML
	if target == mockup.TargetStyle {
		otherField = mockup.FieldBaseHTML
	}

	return withApp(ctx, newTextLogger(os.Stderr), func(a *app) error {
		if _, err := generateTemplate(ctx, a, tpl); err != nil {
			return err
		}
		if err := a.session.UseTemplate(tpl.ID, target); err != nil {
			return err
		}
		fields := map[mockup.Field]string{otherField: other}
		return generateAndReport(ctx, a, mockup.ModeModify, fields, nil, *out)
	})
}

func generateTemplate(ctx context.Context, a *app, tpl mockup.Template) (string, error) {
	stop := startProgressIndicator(os.Stderr, fmt.Sprintf("Rendering %s", tpl.Name))
	html, err := a.session.GenerateTemplate(ctx, tpl.ID)
	stop()
	if err != nil {
		if errors.Is(err, engine.ErrTemplateNotFound) {
			return "", fmt.Errorf("unknown template %q", tpl.ID)
		}
		return "", fmt.Errorf("render template %s: %w", tpl.ID, err)
	}
	return html, nil
}
