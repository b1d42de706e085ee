// Package climatology derives climatological date sets from a reference
// date: the same day across a range of years, optionally widened by the
// surrounding occurrences of a recurring sequence.
package climatology

import (
	"fmt"
	"sort"
	"time"

	"github.com/ecmwf/earthkit-time/calendar"
	"github.com/ecmwf/earthkit-time/sequence"
)

// YearPoint designates one end of a climatological year range. It is either
// an absolute Year, a RelativeYear offset, or the year of a full date (At).
type YearPoint interface {
	resolve(reference calendar.Date) int
}

// Year is an absolute year.
type Year int

func (y Year) resolve(calendar.Date) int { return int(y) }

// RelativeYear is a signed offset against the reference date's year. It has
// no meaning on its own; it is resolved at evaluation time.
type RelativeYear int

func (r RelativeYear) resolve(reference calendar.Date) int {
	return reference.Year + int(r)
}

// At designates the year of a full date.
func At(d calendar.Date) YearPoint { return dateYear(d) }

type dateYear calendar.Date

func (d dateYear) resolve(calendar.Date) int { return d.Year }

// DateRange returns the reference date's month and day repeated for every
// year from start to end inclusive, in ascending order.
//
// A February 29th reference is clamped to February 28th before resolving,
// so every year in the range yields a date, leap or not.
func DateRange(reference calendar.Date, start, end YearPoint) ([]calendar.Date, error) {
	reference = clampLeapDay(reference)
	first := start.resolve(reference)
	last := end.resolve(reference)
	if first > last {
		return nil, fmt.Errorf("%w: start year %d after end year %d", sequence.ErrInvalidArgument, first, last)
	}
	out := make([]calendar.Date, 0, last-first+1)
	for year := first; year <= last; year++ {
		out = append(out, calendar.Date{Year: year, Month: reference.Month, Day: reference.Day})
	}
	return out, nil
}

// ModelClimateDates generates the dates of a model climate: for every
// yearly repetition of the reference date between start and end, the before
// preceding and after following occurrences of seq (plus the repetition
// itself when it is a member), merged, de-duplicated and sorted.
func ModelClimateDates(reference calendar.Date, start, end YearPoint, before, after int, seq *sequence.Sequence) ([]calendar.Date, error) {
	if before < 0 || after < 0 {
		return nil, fmt.Errorf("%w: before/after must be non-negative, got (%d, %d)", sequence.ErrInvalidArgument, before, after)
	}
	anchors, err := DateRange(reference, start, end)
	if err != nil {
		return nil, err
	}
	var all []calendar.Date
	for _, anchor := range anchors {
		dates, err := seq.Bracket(anchor, before, after, true)
		if err != nil {
			return nil, err
		}
		all = append(all, dates...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Before(all[j]) })
	return dedupe(all), nil
}

func clampLeapDay(d calendar.Date) calendar.Date {
	if d.Month == time.February && d.Day == 29 {
		d.Day = 28
	}
	return d
}

func dedupe(dates []calendar.Date) []calendar.Date {
	out := dates[:0]
	for i, d := range dates {
		if i == 0 || d != dates[i-1] {
			out = append(out, d)
		}
	}
	return out
}
