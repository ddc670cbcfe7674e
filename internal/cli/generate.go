package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func runDescribe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	style := fs.String("style", string(mockup.DefaultStyle), "visual style")
	out := fs.String("out", "", "write the preview files to this directory")

	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() == 0 {
		return UsageError{Message: "describe requires a description"}
	}
	if _, err := mockup.ParseStyle(*style); err != nil {
		return UsageError{Message: err.Error()}
	}

	fields := map[mockup.Field]string{
		mockup.FieldText:  strings.Join(fs.Args(), " "),
		mockup.FieldStyle: *style,
	}
	return withApp(ctx, newTextLogger(os.Stderr), func(a *app) error {
		return generateAndReport(ctx, a, mockup.ModeDescription, fields, nil, *out)
	})
}

func runRemix(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remix", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	out := fs.String("out", "", "write the preview files to this directory")

	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() != 2 {
		return UsageError{Message: "remix requires exactly 2 arguments: <base.html> <style.html>"}
	}
	if fs.Arg(0) == "-" && fs.Arg(1) == "-" {
		return UsageError{Message: "only one of the remix inputs can be read from stdin"}
	}

	base, err := readHTML(fs.Arg(0))
	if err != nil {
		return err
	}
	style, err := readHTML(fs.Arg(1))
	if err != nil {
		return err
	}

	fields := map[mockup.Field]string{
		mockup.FieldBaseHTML:  base,
		mockup.FieldStyleHTML: style,
	}
	return withApp(ctx, newTextLogger(os.Stderr), func(a *app) error {
		return generateAndReport(ctx, a, mockup.ModeModify, fields, nil, *out)
	})
}

func runClone(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clone", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var shots stringList
	fs.Var(&shots, "screenshot", "attach a screenshot (repeatable)")
	out := fs.String("out", "", "write the preview files to this directory")

	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() > 1 {
		return UsageError{Message: "clone takes at most 1 argument: <url>"}
	}
	if fs.NArg() == 0 && len(shots) == 0 {
		return UsageError{Message: "clone requires a url or at least one --screenshot"}
	}

	images := make([]mockup.Image, 0, len(shots))
	for _, path := range shots {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read screenshot: %w", err)
		}
		images = append(images, mockup.NewImage(data))
	}

	fields := map[mockup.Field]string{mockup.FieldURL: fs.Arg(0)}
	return withApp(ctx, newTextLogger(os.Stderr), func(a *app) error {
		return generateAndReport(ctx, a, mockup.ModeClone, fields, images, *out)
	})
}

// readHTML reads a file, or stdin for "-".
func readHTML(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	return string(data), nil
}

// generateRun fills the form for mode, runs it and waits for it to settle.
func generateRun(ctx context.Context, a *app, mode mockup.Mode, fields map[mockup.Field]string, screenshots []mockup.Image) (uint64, error) {
	s := a.session
	if err := s.SetMode(mode); err != nil {
		return 0, err
	}
	for field, value := range fields {
		if err := s.SetInput(field, value); err != nil {
			return 0, err
		}
	}
	if mode == mockup.ModeClone {
		if err := s.SetScreenshots(screenshots); err != nil {
			return 0, err
		}
	}

	handle, err := s.StartRun()
	if err != nil {
		var verr *mockup.ValidationError
		if errors.As(err, &verr) {
			return 0, errors.New(verr.Message)
		}
		return 0, err
	}
	stop := startProgressIndicator(os.Stderr, fmt.Sprintf("Generating (%s)", mockup.MustDescriptor(mode).Badge))
	err = handle.Wait(ctx)
	stop()
	if err != nil {
		return 0, fmt.Errorf("run %d: %w", handle.ID, err)
	}
	return handle.ID, nil
}

func generateAndReport(ctx context.Context, a *app, mode mockup.Mode, fields map[mockup.Field]string, screenshots []mockup.Image, outDir string) error {
	runID, err := generateRun(ctx, a, mode, fields, screenshots)
	if err != nil {
		return err
	}
	snap := a.session.Snapshot()

	historyID := ""
	if len(snap.History) > 0 {
		historyID = snap.History[0].ID
	}
	fmt.Fprintf(os.Stdout, "Run %d (%s, backend %s)\n", runID, mode, a.backend)
	if historyID != "" {
		fmt.Fprintf(os.Stdout, "History: %s\n", historyID)
	}
	fmt.Fprintln(os.Stdout)
	printOutput(os.Stdout, snap.Output, snap.Errors, outDir == "")

	if outDir != "" && !snap.Output.Empty() {
		if err := writePreview(os.Stdout, outDir, previewTitle(snap.Input(), snap.Output), snap.Output); err != nil {
			return err
		}
	}
	if snap.Output.Empty() && len(snap.Errors) > 0 {
		return errors.New("generation failed")
	}
	return nil
}
