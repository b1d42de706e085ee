// Package calendar provides the date primitives used by the sequence and
// climatology packages: a year/month/day Date value in the proleptic
// Gregorian calendar, ISO weekdays (Monday=0), month-day pairs, and the
// month-length and leap-year rules.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day of the week, numbered Monday=0 through Sunday=6.
//
// Note this differs from time.Weekday, which starts the week on Sunday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// String returns the English name of the weekday.
func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// IsValid reports whether w is in the Monday..Sunday range.
func (w Weekday) IsValid() bool {
	return w >= Monday && w <= Sunday
}

// ParseWeekday converts a string to a Weekday. It accepts a number in 0-6
// (0 = Monday) or any unambiguous prefix of an English weekday name,
// case-insensitively (e.g. "M", "tue", "Friday").
func ParseWeekday(s string) (Weekday, error) {
	if s == "" {
		return 0, fmt.Errorf("empty week day")
	}
	if isDigits(s) {
		n := 0
		for _, c := range s {
			n = n*10 + int(c-'0')
		}
		if n > 6 {
			return 0, fmt.Errorf("week day out of range: %d not in 0-6", n)
		}
		return Weekday(n), nil
	}
	upper := strings.ToUpper(s)
	match := Weekday(-1)
	for w := Monday; w <= Sunday; w++ {
		if strings.HasPrefix(strings.ToUpper(weekdayNames[w]), upper) {
			if match >= 0 {
				return 0, fmt.Errorf("ambiguous week day: %q could be %s or %s", s, match, w)
			}
			match = w
		}
	}
	if match < 0 {
		return 0, fmt.Errorf("unrecognised week day: %q", s)
	}
	return match, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// IsLeapYear reports whether a year is a leap year in the proleptic
// Gregorian calendar.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var monthLengths = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// MonthLength returns the number of days in the given month.
func MonthLength(year int, month time.Month) int {
	if month < time.January || month > time.December {
		return 0
	}
	if month == time.February && IsLeapYear(year) {
		return 29
	}
	return monthLengths[month]
}

// DayExists reports whether the given year/month/day combination is an
// actual calendar date.
func DayExists(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December {
		return false
	}
	return day >= 1 && day <= MonthLength(year, month)
}

// MonthInYear identifies a specific month of a specific year, for walking
// the calendar month by month.
type MonthInYear struct {
	Year  int
	Month time.Month
}

// Length returns the number of days in the month.
func (m MonthInYear) Length() int {
	return MonthLength(m.Year, m.Month)
}

// Contains reports whether the given day-of-month exists in this month.
func (m MonthInYear) Contains(day int) bool {
	return day >= 1 && day <= m.Length()
}

// Next returns the following month, rolling over the year as needed.
func (m MonthInYear) Next() MonthInYear {
	if m.Month == time.December {
		return MonthInYear{Year: m.Year + 1, Month: time.January}
	}
	return MonthInYear{Year: m.Year, Month: m.Month + 1}
}

// Previous returns the preceding month, rolling over the year as needed.
func (m MonthInYear) Previous() MonthInYear {
	if m.Month == time.January {
		return MonthInYear{Year: m.Year - 1, Month: time.December}
	}
	return MonthInYear{Year: m.Year, Month: m.Month - 1}
}

// Date returns the date for the given day of this month. The day must
// exist in the month; this is the caller's invariant to maintain.
func (m MonthInYear) Date(day int) Date {
	return Date{Year: m.Year, Month: m.Month, Day: day}
}

// MonthDay is a (month, day) pair identifying a recurring day of the year,
// such as 0229 for February 29th.
type MonthDay struct {
	Month time.Month
	Day   int
}

// NewMonthDay validates and builds a MonthDay. February 29th is accepted;
// validity is checked against a leap year.
func NewMonthDay(month time.Month, day int) (MonthDay, error) {
	// Year 2000 is a leap year, so 0229 passes.
	if !DayExists(2000, month, day) {
		return MonthDay{}, fmt.Errorf("invalid month-day: month %d, day %d", month, day)
	}
	return MonthDay{Month: month, Day: day}, nil
}

// Compare orders month-days within a year: -1 if md is earlier than other,
// 0 if equal, +1 if later.
func (md MonthDay) Compare(other MonthDay) int {
	switch {
	case md.Month != other.Month:
		if md.Month < other.Month {
			return -1
		}
		return 1
	case md.Day != other.Day:
		if md.Day < other.Day {
			return -1
		}
		return 1
	}
	return 0
}

// String formats the month-day as MMDD.
func (md MonthDay) String() string {
	return fmt.Sprintf("%02d%02d", int(md.Month), md.Day)
}
