// Package main implements the earthkit-date tool for simple date
// arithmetic.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/ecmwf/earthkit-time/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	commands := map[string]cli.Command{
		"shift": {
			Summary: "shift a date by the given number of days",
			Run: func(_ *pflag.FlagSet, args []string) error {
				date, err := cli.DateArg(args, 0, "date")
				if err != nil {
					return err
				}
				if len(args) < 2 {
					return fmt.Errorf("missing days argument")
				}
				days, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid days: %q", args[1])
				}
				fmt.Println(date.AddDays(days))
				return nil
			},
		},
		"diff": {
			Summary: "subtract two dates, returning the number of days",
			Run: func(_ *pflag.FlagSet, args []string) error {
				date1, err := cli.DateArg(args, 0, "date1")
				if err != nil {
					return err
				}
				date2, err := cli.DateArg(args, 1, "date2")
				if err != nil {
					return err
				}
				fmt.Println(date1.Sub(date2))
				return nil
			},
		},
	}

	return cli.Run("earthkit-date", os.Args[1:], commands)
}
