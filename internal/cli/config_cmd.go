package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/jbonatakis/mockingbird/internal/config"
)

func runConfig(args []string) error {
	if len(args) == 0 {
		return UsageError{Message: "config requires a subcommand: list | set <key> <value> | unset <key>"}
	}
	switch args[0] {
	case "list":
		if len(args) != 1 {
			return UsageError{Message: "config list takes no arguments"}
		}
		return runConfigList()
	case "set":
		return runConfigEdit("set", args[1:], 2)
	case "unset":
		return runConfigEdit("unset", args[1:], 1)
	default:
		return UsageError{Message: fmt.Sprintf("unknown config subcommand: %q", args[0])}
	}
}

func runConfigList() error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	res, err := config.ResolveSettings(root)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Key\tValue\tSource\tLocal\tGlobal")
	for _, option := range config.OptionRegistry() {
		applied := res.Applied[option.KeyPath]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			option.KeyPath,
			displayValue(applied.Value),
			applied.Source,
			displayValue(res.Project.Values[option.KeyPath]),
			displayValue(res.Global.Values[option.KeyPath]),
		)
	}
	_ = tw.Flush()

	for _, w := range res.LayerWarnings {
		fmt.Fprintf(os.Stdout, "warning: %s config ignored (%s)\n", w.Source, w.Kind)
	}
	for _, w := range res.OptionWarnings {
		switch {
		case w.Kind == config.OptionWarningOutOfRange && w.ClampedInt != nil:
			fmt.Fprintf(os.Stdout, "warning: %s %s out of range, clamped to %d\n", w.Source, w.KeyPath, *w.ClampedInt)
		default:
			fmt.Fprintf(os.Stdout, "warning: %s %s is not a valid choice, ignored\n", w.Source, w.KeyPath)
		}
	}
	return nil
}

func displayValue(v config.RawOptionValue) string {
	if s := config.FormatOptionValue(v); s != "" {
		return s
	}
	if v.String != nil {
		return `""`
	}
	return "-"
}

// runConfigEdit handles set and unset, which share flags and differ only in
// the value argument.
func runConfigEdit(verb string, args []string, nargs int) error {
	fs := flag.NewFlagSet("config "+verb, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	global := fs.Bool("global", false, "edit ~/.mockingbird/config.json instead of the project file")

	if err := fs.Parse(args); err != nil {
		return UsageError{Message: err.Error()}
	}
	if fs.NArg() != nargs {
		if verb == "set" {
			return UsageError{Message: "config set requires exactly 2 arguments: <key> <value>"}
		}
		return UsageError{Message: "config unset requires exactly 1 argument: <key>"}
	}

	option, ok := config.LookupOption(fs.Arg(0))
	if !ok {
		return UsageError{Message: fmt.Sprintf("unknown config key %q (see `mockingbird config list`)", fs.Arg(0))}
	}

	root, err := projectRoot()
	if err != nil {
		return err
	}
	source := config.ConfigSourceLocal
	if *global {
		source = config.ConfigSourceGlobal
	}
	path, err := config.LayerPath(source, root)
	if err != nil {
		return err
	}

	project, globalLayer, err := config.LoadLayerOptionValues(root)
	if err != nil {
		return err
	}
	values := project.Values
	if *global {
		values = globalLayer.Values
	}

	if verb == "set" {
		value, err := config.ParseOptionValue(option, fs.Arg(1))
		if err != nil {
			return UsageError{Message: fmt.Sprintf("%s: %v", option.KeyPath, err)}
		}
		values[option.KeyPath] = value
	} else {
		delete(values, option.KeyPath)
	}

	if err := config.SaveConfigValues(path, values); err != nil {
		return err
	}
	if verb == "set" {
		fmt.Fprintf(os.Stdout, "set %s = %s (%s)\n", option.KeyPath, displayValue(values[option.KeyPath]), path)
	} else {
		fmt.Fprintf(os.Stdout, "unset %s (%s)\n", option.KeyPath, path)
	}
	return nil
}
