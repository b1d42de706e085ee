// Package timesteps converts between forecast step ranges (whole hours) and
// day, week and month numbers. These helpers are pure arithmetic and carry
// no recurrence state.
package timesteps

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ecmwf/earthkit-time/calendar"
)

const weekHours = 7 * 24

// Range is a forecast step range in hours, inclusive of both ends.
type Range struct {
	Start int
	End   int
}

// ParseRange converts a "start-end" step range to a Range. A bare number
// denotes a zero-length range.
func ParseRange(s string) (Range, error) {
	first, rest, found := strings.Cut(s, "-")
	if !found {
		rest = first
	}
	start, err1 := strconv.Atoi(first)
	end, err2 := strconv.Atoi(rest)
	if err1 != nil || err2 != nil {
		return Range{}, fmt.Errorf("invalid step range: %q", s)
	}
	return Range{Start: start, End: end}, nil
}

// String formats the range as "start-end".
func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// RegularRanges lists regularly-spaced step ranges: each range starts at
// start, start+interval, start+2*interval, ... and spans width hours, with
// the last range ending at or before end.
func RegularRanges(start, end, width, interval int) ([]Range, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %d", interval)
	}
	if width < 0 {
		return nil, fmt.Errorf("width must be non-negative, got %d", width)
	}
	var out []Range
	for step := start; step+width <= end; step += interval {
		out = append(out, Range{Start: step, End: step + width})
	}
	return out, nil
}

// ExpandRange lists the regularly-spaced steps within a range, endpoints
// included. includeStart controls whether the first step is returned.
func ExpandRange(r Range, interval int, includeStart bool) ([]int, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %d", interval)
	}
	start := r.Start
	if !includeStart {
		start += interval
	}
	var out []int
	for step := start; step <= r.End; step += interval {
		out = append(out, step)
	}
	return out, nil
}

// =============================================================================
// Days
// =============================================================================

// dailyShift is the offset in hours from the base time to the start of the
// first forecast day.
func dailyShift(baseHour, dayStartHour int) int {
	return mod(dayStartHour-baseHour, 24)
}

// RangeFromDay computes the step range covering a forecast day. Day 1
// starts on the first step whose valid time is dayStartHour.
func RangeFromDay(day, baseHour, dayStartHour int) Range {
	start := dailyShift(baseHour, dayStartHour) + 24*(day-1)
	return Range{Start: start, End: start + 24}
}

// DayFromRange computes the forecast day covered by the given step range.
// It is the exact inverse of RangeFromDay.
func DayFromRange(r Range, baseHour, dayStartHour int) (int, error) {
	if r.End-r.Start != 24 {
		return 0, fmt.Errorf("range %q is not one day long", r)
	}
	day, rem := divmod(r.End-dailyShift(baseHour, dayStartHour), 24)
	if rem != 0 {
		return 0, fmt.Errorf("range %q does not align on a day", r)
	}
	return day, nil
}

// =============================================================================
// Weeks
// =============================================================================

// WeekBase anchors week numbering on the forecast base time: its weekday
// and its hour of day.
type WeekBase struct {
	Weekday calendar.Weekday
	Hour    int
}

// weeklyShift is the offset in hours from the base time to the start of
// the first forecast week. A nil base with a nil weekStart numbers weeks
// from step 0; a weekStart without a base is meaningless.
func weeklyShift(base *WeekBase, weekStart *calendar.Weekday) (int, error) {
	if base == nil {
		if weekStart == nil {
			return 0, nil
		}
		return 0, fmt.Errorf("cannot compute a week shift without a base time")
	}
	if weekStart == nil {
		return mod(-base.Hour, 24), nil
	}
	shift := mod(int(*weekStart-base.Weekday), 7)*24 - base.Hour
	if shift < 0 {
		shift += weekHours
	}
	return shift, nil
}

// RangeFromWeek computes the step range covering a forecast week. With no
// base, week 1 starts at step 0; with a base but no week start, on the
// first step at 00:00; otherwise on the first step falling on weekStart at
// 00:00.
func RangeFromWeek(week int, base *WeekBase, weekStart *calendar.Weekday) (Range, error) {
	shift, err := weeklyShift(base, weekStart)
	if err != nil {
		return Range{}, err
	}
	start := shift + weekHours*(week-1)
	return Range{Start: start, End: start + weekHours}, nil
}

// WeekFromRange computes the forecast week covered by the given step range.
// It is the exact inverse of RangeFromWeek.
func WeekFromRange(r Range, base *WeekBase, weekStart *calendar.Weekday) (int, error) {
	shift, err := weeklyShift(base, weekStart)
	if err != nil {
		return 0, err
	}
	if r.End-r.Start != weekHours {
		return 0, fmt.Errorf("range %q is not one week long", r)
	}
	week, rem := divmod(r.End-shift, weekHours)
	if rem != 0 {
		return 0, fmt.Errorf("range %q does not align on a week", r)
	}
	return week, nil
}

// =============================================================================
// Months
// =============================================================================

// StartDateFromMonth computes the first day of a forecast month. The first
// month has index 1; monthStart is the day of the month each forecast month
// begins on.
func StartDateFromMonth(month int, base calendar.Date, monthStart int) calendar.Date {
	if base.Day > monthStart {
		month++
	}
	dyear, m := divmod(int(base.Month)+month-2, 12)
	return calendar.Date{Year: base.Year + dyear, Month: time.Month(m + 1), Day: monthStart}
}

// MonthFromStartDate computes the forecast month starting on the given
// date. The first month has number 1.
func MonthFromStartDate(base, start calendar.Date) int {
	dmonth := (start.Year-base.Year)*12 + int(start.Month) - int(base.Month)
	if base.Day > start.Day {
		dmonth--
	}
	return dmonth + 1
}

// RangeFromMonth computes the step range covering a forecast month.
func RangeFromMonth(month int, base calendar.Date, monthStart int) Range {
	valid := StartDateFromMonth(month, base, monthStart)
	start := valid.Sub(base) * 24
	return Range{Start: start, End: start + calendar.MonthLength(valid.Year, valid.Month)*24}
}

// MonthFromRange computes the forecast month covered by the given step
// range. It is the exact inverse of RangeFromMonth.
func MonthFromRange(r Range, base calendar.Date, monthStart int) (int, error) {
	startDays, _ := divmod(r.Start, 24)
	start := base.AddDays(startDays)
	if start.Day != monthStart {
		return 0, fmt.Errorf("range %q does not align on a forecast month", r)
	}
	endDays, _ := divmod(r.End, 24)
	end := base.AddDays(endDays)
	if end.Day != start.Day {
		return 0, fmt.Errorf("range %q is not one month long", r)
	}
	return MonthFromStartDate(base, start), nil
}

// =============================================================================
// Integer helpers (floored division, like Python's divmod)
// =============================================================================

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func divmod(a, n int) (int, int) {
	m := mod(a, n)
	return (a - m) / n, m
}
