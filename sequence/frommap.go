package sequence

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ecmwf/earthkit-time/calendar"
)

// FromMap builds a sequence from a declarative description, as obtained
// from a YAML preset file. The granularity is selected by the "type" key
// (daily, weekly, monthly, yearly); the remaining keys are:
//
//   - days: recurring days. Week days are numbers 0-6 (0 = Monday) or name
//     prefixes; monthly days are numbers 1-31; yearly days are MMDD strings
//     or [month, day] pairs. A single scalar is accepted in place of a list.
//   - excludes: days to skip. Days of the month for daily, MMDD values for
//     monthly, YYYYMMDD values for yearly. Not supported for weekly.
//
// Descriptions that are missing required keys or violate the construction
// invariants fail with ErrInvalidArgument.
func FromMap(description map[string]any) (*Sequence, error) {
	rawType, ok := description["type"]
	if !ok {
		return nil, fmt.Errorf("%w: sequence description must contain a `type` key", ErrInvalidArgument)
	}
	seqType, ok := rawType.(string)
	if !ok {
		return nil, fmt.Errorf("%w: sequence `type` must be a string, got %T", ErrInvalidArgument, rawType)
	}
	switch seqType {
	case "daily":
		return dailyFromMap(description)
	case "weekly":
		return weeklyFromMap(description)
	case "monthly":
		return monthlyFromMap(description)
	case "yearly":
		return yearlyFromMap(description)
	default:
		return nil, fmt.Errorf("%w: unknown sequence type %q", ErrInvalidArgument, seqType)
	}
}

func dailyFromMap(description map[string]any) (*Sequence, error) {
	var excludes []int
	for _, elem := range listValue(description["excludes"]) {
		day, ok := intValue(elem)
		if !ok {
			return nil, fmt.Errorf("%w: daily excludes must be days of the month, got %v", ErrInvalidArgument, elem)
		}
		excludes = append(excludes, day)
	}
	return Daily(excludes)
}

func weeklyFromMap(description map[string]any) (*Sequence, error) {
	if _, ok := description["excludes"]; ok {
		return nil, fmt.Errorf("%w: weekly sequences do not support excludes", ErrInvalidArgument)
	}
	raw, ok := description["days"]
	if !ok {
		return nil, fmt.Errorf("%w: weekly sequence must provide `days`", ErrInvalidArgument)
	}
	var days []calendar.Weekday
	for _, elem := range listValue(raw) {
		day, err := weekdayValue(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		days = append(days, day)
	}
	return Weekly(days)
}

func monthlyFromMap(description map[string]any) (*Sequence, error) {
	raw, ok := description["days"]
	if !ok {
		return nil, fmt.Errorf("%w: monthly sequence must provide `days`", ErrInvalidArgument)
	}
	var days []int
	for _, elem := range listValue(raw) {
		day, ok := intValue(elem)
		if !ok {
			return nil, fmt.Errorf("%w: monthly days must be numbers, got %v", ErrInvalidArgument, elem)
		}
		days = append(days, day)
	}
	var excludes []calendar.MonthDay
	for _, elem := range listValue(description["excludes"]) {
		md, err := monthDayValue(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		excludes = append(excludes, md)
	}
	return Monthly(days, excludes)
}

func yearlyFromMap(description map[string]any) (*Sequence, error) {
	raw, ok := description["days"]
	if !ok {
		return nil, fmt.Errorf("%w: yearly sequence must provide `days`", ErrInvalidArgument)
	}
	var days []calendar.MonthDay
	for _, elem := range yearlyDaysList(raw) {
		md, err := monthDayValue(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		days = append(days, md)
	}
	var excludes []calendar.Date
	for _, elem := range listValue(description["excludes"]) {
		d, err := dateValue(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		excludes = append(excludes, d)
	}
	return Yearly(days, excludes)
}

// listValue normalizes a value to a list: nil becomes empty, a scalar
// becomes a one-element list.
func listValue(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

// yearlyDaysList is listValue with one disambiguation: a bare [month, day]
// pair of numbers denotes a single yearly day, not two entries.
func yearlyDaysList(raw any) []any {
	if v, ok := raw.([]any); ok && len(v) == 2 {
		if _, ok := intValue(v[0]); ok {
			return []any{v}
		}
	}
	return listValue(raw)
}

// intValue coerces YAML/JSON scalar number representations to int.
func intValue(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

func weekdayValue(raw any) (calendar.Weekday, error) {
	if n, ok := intValue(raw); ok {
		day := calendar.Weekday(n)
		if !day.IsValid() {
			return 0, fmt.Errorf("week day out of range: %d not in 0-6", n)
		}
		return day, nil
	}
	if s, ok := raw.(string); ok {
		return calendar.ParseWeekday(s)
	}
	return 0, fmt.Errorf("invalid week day value: %v", raw)
}

func monthDayValue(raw any) (calendar.MonthDay, error) {
	switch v := raw.(type) {
	case string:
		return calendar.ParseMonthDay(v)
	case []any:
		if len(v) != 2 {
			return calendar.MonthDay{}, fmt.Errorf("month-day pair must have two elements, got %v", v)
		}
		month, okM := intValue(v[0])
		day, okD := intValue(v[1])
		if !okM || !okD {
			return calendar.MonthDay{}, fmt.Errorf("invalid month-day pair: %v", v)
		}
		return calendar.NewMonthDay(time.Month(month), day)
	default:
		if n, ok := intValue(raw); ok {
			// Bare MMDD number, e.g. 229 for February 29th.
			return calendar.ParseMonthDay(fmt.Sprintf("%04d", n))
		}
		return calendar.MonthDay{}, fmt.Errorf("invalid month-day value: %v", raw)
	}
}

func dateValue(raw any) (calendar.Date, error) {
	switch v := raw.(type) {
	case string:
		return calendar.ParseDate(v)
	case []any:
		if len(v) != 3 {
			return calendar.Date{}, fmt.Errorf("date triple must have three elements, got %v", v)
		}
		year, okY := intValue(v[0])
		month, okM := intValue(v[1])
		day, okD := intValue(v[2])
		if !okY || !okM || !okD {
			return calendar.Date{}, fmt.Errorf("invalid date triple: %v", v)
		}
		return calendar.New(year, time.Month(month), day)
	default:
		if n, ok := intValue(raw); ok {
			return calendar.ParseDate(strconv.Itoa(n))
		}
		return calendar.Date{}, fmt.Errorf("invalid date value: %v", raw)
	}
}
