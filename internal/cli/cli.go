// Package cli holds the shared plumbing for the earthkit command line
// tools: subcommand dispatch, date argument parsing and output formatting.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ecmwf/earthkit-time/calendar"
)

// Action runs one subcommand with its parsed flag set and the remaining
// positional arguments.
type Action func(flags *pflag.FlagSet, args []string) error

// Command describes one subcommand of a tool.
type Command struct {
	Summary string
	Flags   func(flags *pflag.FlagSet)
	Run     Action
}

// Run dispatches os.Args-style arguments to the matching subcommand. It
// prints usage and returns an error when no subcommand matches.
func Run(tool string, args []string, commands map[string]Command) error {
	if len(args) < 1 || isHelpFlag(args[0]) {
		printUsage(tool, commands)
		if len(args) < 1 {
			return fmt.Errorf("subcommand required")
		}
		return nil
	}

	name := args[0]
	command, ok := commands[name]
	if !ok {
		printUsage(tool, commands)
		return fmt.Errorf("unknown subcommand: %q", name)
	}

	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if command.Flags != nil {
		command.Flags(flags)
	}
	if err := flags.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	return command.Run(flags, flags.Args())
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

func printUsage(tool string, commands map[string]Command) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(os.Stderr, "Usage: %s <subcommand> [flags]\n\nSubcommands:\n", tool)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", name, commands[name].Summary)
	}
	fmt.Fprintf(os.Stderr, "\nRun '%s <subcommand> --help' for subcommand flags.\n", tool)
}

// DateArg parses one positional YYYYMMDD (or YYYY-MM-DD) argument.
func DateArg(args []string, index int, name string) (calendar.Date, error) {
	if index >= len(args) {
		return calendar.Date{}, fmt.Errorf("missing %s argument", name)
	}
	d, err := calendar.ParseDate(args[index])
	if err != nil {
		return calendar.Date{}, fmt.Errorf("invalid %s: %v", name, err)
	}
	return d, nil
}

// AddSeparatorFlag registers the list output separator flag.
func AddSeparatorFlag(flags *pflag.FlagSet) *string {
	return flags.String("sep", "/", "separator between printed dates")
}

// FormatDates joins dates as YYYYMMDD strings with the given separator.
func FormatDates(dates []calendar.Date, sep string) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.String()
	}
	return strings.Join(parts, sep)
}

// SplitList splits a slash-separated argument, returning nil for an empty
// string.
func SplitList(arg string) []string {
	if arg == "" {
		return nil
	}
	return strings.Split(arg, "/")
}
