// Package main implements the earthkit-climatology tool for computing
// model climate dates.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ecmwf/earthkit-time/climatology"
	"github.com/ecmwf/earthkit-time/internal/cli"
	"github.com/ecmwf/earthkit-time/preset"
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
		from   *cli.YearPointFlags
		to     *cli.YearPointFlags
		before int
		after  int
		sep    *string
	)

	rangeFlags := func(flags *pflag.FlagSet) {
		from = cli.RegisterYearPoint(flags, "from")
		to = cli.RegisterYearPoint(flags, "to")
		sep = cli.AddSeparatorFlag(flags)
	}

	commands := map[string]cli.Command{
		"range": {
			Summary: "compute climatological date ranges",
			Flags:   rangeFlags,
			Run: func(_ *pflag.FlagSet, args []string) error {
				reference, err := cli.DateArg(args, 0, "date")
				if err != nil {
					return err
				}
				start, err := from.Point()
				if err != nil {
					return err
				}
				end, err := to.Point()
				if err != nil {
					return err
				}
				dates, err := climatology.DateRange(reference, start, end)
				if err != nil {
					return err
				}
				fmt.Println(cli.FormatDates(dates, *sep))
				return nil
			},
		},
		"mclim": {
			Summary: "compute sets of dates for model climatologies",
			Flags: func(flags *pflag.FlagSet) {
				rangeFlags(flags)
				seqFlags.Register(flags)
				flags.IntVar(&before, "before", 0,
					"pick up all inputs starting this many occurrences before the chosen date")
				flags.IntVar(&after, "after", 0,
					"pick up all inputs up to this many occurrences after the chosen date")
			},
			Run: func(flags *pflag.FlagSet, args []string) error {
				if !flags.Changed("before") || !flags.Changed("after") {
					return fmt.Errorf("--before and --after are required")
				}
				seq, err := seqFlags.Build(loader)
				if err != nil {
					return err
				}
				reference, err := cli.DateArg(args, 0, "date")
				if err != nil {
					return err
				}
				start, err := from.Point()
				if err != nil {
					return err
				}
				end, err := to.Point()
				if err != nil {
					return err
				}
				dates, err := climatology.ModelClimateDates(reference, start, end, before, after, seq)
				if err != nil {
					return err
				}
				fmt.Println(cli.FormatDates(dates, *sep))
				return nil
			},
		},
	}

	return cli.Run("earthkit-climatology", os.Args[1:], commands)
}
