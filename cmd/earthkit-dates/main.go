// Package main implements the earthkit-dates tool for manipulating
// sequences of dates.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/ecmwf/earthkit-time/calendar"
	"github.com/ecmwf/earthkit-time/internal/cli"
	"github.com/ecmwf/earthkit-time/preset"
	"github.com/ecmwf/earthkit-time/sequence"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	loader := preset.FromEnvironment()
	seqFlags := &cli.SequenceFlags{}
	var (
		inclusive    bool
		skip         int
		resolve      string
		excludeStart bool
		excludeEnd   bool
		sep          *string
	)

	seekFlags := func(flags *pflag.FlagSet) {
		seqFlags.Register(flags)
		flags.BoolVar(&inclusive, "inclusive", false,
			"if the given date is in the sequence, return it")
		flags.IntVar(&skip, "skip", 0, "if set, skip over that number of dates")
	}

	seek := func(args []string, previous bool) error {
		seq, err := seqFlags.Build(loader)
		if err != nil {
			return err
		}
		date, err := cli.DateArg(args, 0, "date")
		if err != nil {
			return err
		}
		var result calendar.Date
		if previous {
			result, err = seq.Previous(date, inclusive, skip)
		} else {
			result, err = seq.Next(date, inclusive, skip)
		}
		if err != nil {
			return err
		}
		fmt.Println(result)
		return nil
	}

	commands := map[string]cli.Command{
		"next": {
			Summary: "compute the next date in the given sequence",
			Flags:   seekFlags,
			Run: func(_ *pflag.FlagSet, args []string) error {
				return seek(args, false)
			},
		},
		"previous": {
			Summary: "compute the previous date in the given sequence",
			Flags:   seekFlags,
			Run: func(_ *pflag.FlagSet, args []string) error {
				return seek(args, true)
			},
		},
		"nearest": {
			Summary: "compute the nearest date in the given sequence",
			Flags: func(flags *pflag.FlagSet) {
				seqFlags.Register(flags)
				flags.StringVar(&resolve, "resolve", "previous",
					"return this date in case of a tie (previous or next)")
			},
			Run: func(_ *pflag.FlagSet, args []string) error {
				seq, err := seqFlags.Build(loader)
				if err != nil {
					return err
				}
				date, err := cli.DateArg(args, 0, "date")
				if err != nil {
					return err
				}
				result, err := seq.Nearest(date, sequence.Resolve(resolve))
				if err != nil {
					return err
				}
				fmt.Println(result)
				return nil
			},
		},
		"range": {
			Summary: "compute the sequence dates that fall within a range",
			Flags: func(flags *pflag.FlagSet) {
				seqFlags.Register(flags)
				flags.BoolVar(&excludeStart, "exclude-start", false, "exclude starting date")
				flags.BoolVar(&excludeEnd, "exclude-end", false, "exclude ending date")
				sep = cli.AddSeparatorFlag(flags)
			},
			Run: func(_ *pflag.FlagSet, args []string) error {
				seq, err := seqFlags.Build(loader)
				if err != nil {
					return err
				}
				from, err := cli.DateArg(args, 0, "from")
				if err != nil {
					return err
				}
				to, err := cli.DateArg(args, 1, "to")
				if err != nil {
					return err
				}
				dates, err := seq.Range(from, to, !excludeStart, !excludeEnd)
				if err != nil {
					return err
				}
				fmt.Println(cli.FormatDates(dates, *sep))
				return nil
			},
		},
		"bracket": {
			Summary: "compute the sequence dates around a date",
			Flags: func(flags *pflag.FlagSet) {
				seqFlags.Register(flags)
				flags.BoolVar(&inclusive, "inclusive", false,
					"include the given date in the sequence")
				sep = cli.AddSeparatorFlag(flags)
			},
			Run: func(_ *pflag.FlagSet, args []string) error {
				seq, err := seqFlags.Build(loader)
				if err != nil {
					return err
				}
				date, err := cli.DateArg(args, 0, "date")
				if err != nil {
					return err
				}
				before, after, err := bracketCounts(args[1:])
				if err != nil {
					return err
				}
				dates, err := seq.Bracket(date, before, after, inclusive)
				if err != nil {
					return err
				}
				fmt.Println(cli.FormatDates(dates, *sep))
				return nil
			},
		},
	}

	return cli.Run("earthkit-dates", os.Args[1:], commands)
}

// bracketCounts parses the optional before/after positional arguments.
// Both default to 1; a lone count applies to both sides.
func bracketCounts(args []string) (before, after int, err error) {
	before, after = 1, 1
	if len(args) > 2 {
		return 0, 0, fmt.Errorf("too many arguments")
	}
	if len(args) >= 1 {
		before, err = strconv.Atoi(args[0])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid before count: %q", args[0])
		}
		after = before
	}
	if len(args) == 2 {
		after, err = strconv.Atoi(args[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid after count: %q", args[1])
		}
	}
	return before, after, nil
}
