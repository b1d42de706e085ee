package calendar

import (
	"fmt"
	"time"
)

// Date is an immutable year/month/day triple in the proleptic Gregorian
// calendar. The zero value is not a valid date.
//
// Dates are compared by calendar order and are safe to use as map keys.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New validates and builds a Date.
func New(year int, month time.Month, day int) (Date, error) {
	if !DayExists(year, month, day) {
		return Date{}, fmt.Errorf("invalid date: year %d, month %d, day %d", year, month, day)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// FromTime converts the date part of a time.Time, ignoring clock and zone.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in the local time zone.
func Today() Date {
	return FromTime(time.Now())
}

// Time returns the date at midnight UTC. Go's time package uses the
// proleptic Gregorian calendar, so all date arithmetic below is exact.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsValid reports whether the date exists in the calendar.
func (d Date) IsValid() bool {
	return DayExists(d.Year, d.Month, d.Day)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n days after d (before, if n is negative).
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Sub returns the number of days from other to d (positive if d is later).
func (d Date) Sub(other Date) int {
	return int(d.Time().Sub(other.Time()) / (24 * time.Hour))
}

// Compare orders two dates: -1 if d is before other, 0 if equal, +1 after.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		if d.Year < other.Year {
			return -1
		}
		return 1
	case d.Month != other.Month:
		if d.Month < other.Month {
			return -1
		}
		return 1
	case d.Day != other.Day:
		if d.Day < other.Day {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is later than other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// Weekday returns the ISO weekday of the date (Monday=0).
func (d Date) Weekday() Weekday {
	// time.Weekday starts at Sunday=0; shift so Monday=0.
	return Weekday((int(d.Time().Weekday()) + 6) % 7)
}

// YearDay returns the day of the year, 1 through 365 or 366.
func (d Date) YearDay() int {
	return d.Time().YearDay()
}

// MonthDay returns the recurring (month, day) part of the date.
func (d Date) MonthDay() MonthDay {
	return MonthDay{Month: d.Month, Day: d.Day}
}

// String formats the date as YYYYMMDD, the wire format used throughout.
func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}
