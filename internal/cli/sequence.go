package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/ecmwf/earthkit-time/calendar"
	"github.com/ecmwf/earthkit-time/climatology"
	"github.com/ecmwf/earthkit-time/preset"
	"github.com/ecmwf/earthkit-time/sequence"
)

// SequenceFlags gathers the mutually exclusive sequence selection flags
// shared by every tool that takes a sequence.
type SequenceFlags struct {
	daily   bool
	weekly  string
	monthly string
	yearly  string
	preset  string
	exclude string
}

// Register adds the sequence selection flags to a flag set.
func (sf *SequenceFlags) Register(flags *pflag.FlagSet) {
	flags.BoolVar(&sf.daily, "daily", false, "daily inputs")
	flags.StringVar(&sf.weekly, "weekly", "",
		"weekly inputs on these days (slash-separated; 0 = Monday, or an unambiguous name prefix)")
	flags.StringVar(&sf.monthly, "monthly", "",
		"monthly inputs on these days (slash-separated)")
	flags.StringVar(&sf.yearly, "yearly", "",
		"yearly inputs on these days (MMDD, slash-separated)")
	flags.StringVar(&sf.preset, "preset", "",
		"name of a preset sequence, or path to a YAML preset file")
	flags.StringVar(&sf.exclude, "exclude", "",
		"exclude these dates (slash-separated; day of month for daily, MMDD for monthly, YYYYMMDD for yearly)")
}

// Build constructs the selected sequence, loading presets through the
// given loader.
func (sf *SequenceFlags) Build(loader *preset.Loader) (*sequence.Sequence, error) {
	selected := 0
	if sf.daily {
		selected++
	}
	for _, s := range []string{sf.weekly, sf.monthly, sf.yearly, sf.preset} {
		if s != "" {
			selected++
		}
	}
	if selected != 1 {
		return nil, fmt.Errorf("exactly one of --daily, --weekly, --monthly, --yearly, --preset is required")
	}

	excludes := SplitList(sf.exclude)

	switch {
	case sf.daily:
		days := make([]int, len(excludes))
		for i, s := range excludes {
			day, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("invalid excludes, must be a slash-separated list of days: %q", s)
			}
			days[i] = day
		}
		return sequence.Daily(days)

	case sf.weekly != "":
		if len(excludes) > 0 {
			return nil, fmt.Errorf("%w: weekly sequences do not support excludes", sequence.ErrInvalidArgument)
		}
		parts := SplitList(sf.weekly)
		days := make([]calendar.Weekday, len(parts))
		for i, s := range parts {
			day, err := calendar.ParseWeekday(s)
			if err != nil {
				return nil, err
			}
			days[i] = day
		}
		return sequence.Weekly(days)

	case sf.monthly != "":
		parts := SplitList(sf.monthly)
		days := make([]int, len(parts))
		for i, s := range parts {
			day, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("invalid monthly day: %q", s)
			}
			days[i] = day
		}
		excluded := make([]calendar.MonthDay, len(excludes))
		for i, s := range excludes {
			md, err := calendar.ParseMonthDay(s)
			if err != nil {
				return nil, err
			}
			excluded[i] = md
		}
		return sequence.Monthly(days, excluded)

	case sf.yearly != "":
		parts := SplitList(sf.yearly)
		days := make([]calendar.MonthDay, len(parts))
		for i, s := range parts {
			md, err := calendar.ParseMonthDay(s)
			if err != nil {
				return nil, err
			}
			days[i] = md
		}
		excluded := make([]calendar.Date, len(excludes))
		for i, s := range excludes {
			d, err := calendar.ParseDate(s)
			if err != nil {
				return nil, err
			}
			excluded[i] = d
		}
		return sequence.Yearly(days, excluded)

	default:
		return loader.Load(sf.preset)
	}
}

// YearPointFlags gathers one end of a climatological year range. Exactly
// one of the three flags must be set.
type YearPointFlags struct {
	prefix string
	year   string
	date   string
	rel    string
}

// RegisterYearPoint adds --<prefix>-date, --<prefix>-year and
// --<prefix>-rel-year to a flag set.
func RegisterYearPoint(flags *pflag.FlagSet, prefix string) *YearPointFlags {
	yp := &YearPointFlags{prefix: prefix}
	flags.StringVar(&yp.date, prefix+"-date", "", "date (YYYYMMDD)")
	flags.StringVar(&yp.year, prefix+"-year", "", "year")
	flags.StringVar(&yp.rel, prefix+"-rel-year", "", "year relative to the reference date")
	return yp
}

// Point resolves the flags into a climatology year point.
func (yp *YearPointFlags) Point() (climatology.YearPoint, error) {
	set := 0
	for _, s := range []string{yp.year, yp.date, yp.rel} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of --%s-date, --%s-year, --%s-rel-year is required",
			yp.prefix, yp.prefix, yp.prefix)
	}

	switch {
	case yp.year != "":
		year, err := strconv.Atoi(yp.year)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s-year: %q", yp.prefix, yp.year)
		}
		return climatology.Year(year), nil
	case yp.rel != "":
		offset, err := strconv.Atoi(yp.rel)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s-rel-year: %q", yp.prefix, yp.rel)
		}
		return climatology.RelativeYear(offset), nil
	default:
		d, err := calendar.ParseDate(yp.date)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s-date: %v", yp.prefix, err)
		}
		return climatology.At(d), nil
	}
}
