package calendar

import (
	"fmt"
	"strconv"
	"time"
)

// ParseDate parses a date in YYYYMMDD or YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	var ys, ms, ds string
	switch len(s) {
	case 8:
		ys, ms, ds = s[:4], s[4:6], s[6:]
	case 10:
		if s[4] != '-' || s[7] != '-' {
			return Date{}, fmt.Errorf("unrecognised date format: %q", s)
		}
		ys, ms, ds = s[:4], s[5:7], s[8:]
	default:
		return Date{}, fmt.Errorf("unrecognised date format: %q", s)
	}
	if !isDigits(ys) || !isDigits(ms) || !isDigits(ds) {
		return Date{}, fmt.Errorf("unrecognised date format: %q", s)
	}
	year, _ := strconv.Atoi(ys)
	month, _ := strconv.Atoi(ms)
	day, _ := strconv.Atoi(ds)
	return New(year, time.Month(month), day)
}

// ParseMonthDay parses a recurring day of the year in MMDD form.
func ParseMonthDay(s string) (MonthDay, error) {
	if len(s) != 4 || !isDigits(s) {
		return MonthDay{}, fmt.Errorf("unrecognised month-day value: %q", s)
	}
	month, _ := strconv.Atoi(s[:2])
	if month < 1 || month > 12 {
		return MonthDay{}, fmt.Errorf("invalid month: %d not in 1-12", month)
	}
	day, _ := strconv.Atoi(s[2:])
	md, err := NewMonthDay(time.Month(month), day)
	if err != nil {
		return MonthDay{}, fmt.Errorf("invalid day: %d not in 1-%d", day, MonthLength(2000, time.Month(month)))
	}
	return md, nil
}
