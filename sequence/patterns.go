package sequence

import (
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/ecmwf/earthkit-time/calendar"
)

// =============================================================================
// Daily
// =============================================================================

// dailyPattern matches every calendar day, minus excluded days of the month.
type dailyPattern struct {
	excludes map[int]bool
}

// Daily builds a sequence of consecutive dates. Days of the month listed in
// excludes (1-31) are skipped in every month.
func Daily(excludes []int) (*Sequence, error) {
	p := dailyPattern{excludes: make(map[int]bool, len(excludes))}
	for _, day := range excludes {
		if day < 1 || day > 31 {
			return nil, fmt.Errorf("%w: excluded day %d not in 1-31", ErrInvalidArgument, day)
		}
		p.excludes[day] = true
	}
	if len(p.excludes) == 31 {
		return nil, fmt.Errorf("%w: all days of the month are excluded", ErrInvalidArgument)
	}
	return &Sequence{pat: p}, nil
}

func (p dailyPattern) matches(calendar.Date) bool { return true }

func (p dailyPattern) excluded(d calendar.Date) bool { return p.excludes[d.Day] }

func (p dailyPattern) candidates(from calendar.Date, dir direction) iter.Seq[calendar.Date] {
	return func(yield func(calendar.Date) bool) {
		cur := from
		for {
			cur = cur.AddDays(int(dir))
			if !yield(cur) {
				return
			}
		}
	}
}

func (p dailyPattern) String() string {
	if len(p.excludes) == 0 {
		return "daily"
	}
	return fmt.Sprintf("daily excluding days %s", joinInts(sortedKeys(p.excludes)))
}

// =============================================================================
// Weekly
// =============================================================================

// weeklyPattern matches fixed days of the week. days is sorted and
// duplicate-free. Weekly sequences have no exclusion granularity.
type weeklyPattern struct {
	days []calendar.Weekday
}

// Weekly builds a sequence recurring on the given days of the week.
func Weekly(days []calendar.Weekday) (*Sequence, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: weekly sequence needs at least one week day", ErrInvalidArgument)
	}
	seen := make(map[calendar.Weekday]bool, len(days))
	p := weeklyPattern{days: make([]calendar.Weekday, 0, len(days))}
	for _, day := range days {
		if !day.IsValid() {
			return nil, fmt.Errorf("%w: week day out of range: %d not in 0-6", ErrInvalidArgument, int(day))
		}
		if !seen[day] {
			seen[day] = true
			p.days = append(p.days, day)
		}
	}
	sort.Slice(p.days, func(i, j int) bool { return p.days[i] < p.days[j] })
	return &Sequence{pat: p}, nil
}

func (p weeklyPattern) matches(d calendar.Date) bool {
	wd := d.Weekday()
	for _, day := range p.days {
		if day == wd {
			return true
		}
	}
	return false
}

func (p weeklyPattern) excluded(calendar.Date) bool { return false }

// stepOne returns the closest matching date strictly beyond d, by weekday
// arithmetic mod 7.
func (p weeklyPattern) stepOne(d calendar.Date, dir direction) calendar.Date {
	wd := d.Weekday()
	if dir == forward {
		for _, day := range p.days {
			if day > wd {
				return d.AddDays(int(day - wd))
			}
		}
		return d.AddDays(int(p.days[0]-wd) + 7)
	}
	for i := len(p.days) - 1; i >= 0; i-- {
		if p.days[i] < wd {
			return d.AddDays(int(p.days[i] - wd))
		}
	}
	return d.AddDays(int(p.days[len(p.days)-1]-wd) - 7)
}

func (p weeklyPattern) candidates(from calendar.Date, dir direction) iter.Seq[calendar.Date] {
	return func(yield func(calendar.Date) bool) {
		cur := from
		for {
			cur = p.stepOne(cur, dir)
			if !yield(cur) {
				return
			}
		}
	}
}

func (p weeklyPattern) String() string {
	names := make([]string, len(p.days))
	for i, day := range p.days {
		names[i] = day.String()
	}
	return "weekly on " + strings.Join(names, ", ")
}

// =============================================================================
// Monthly
// =============================================================================

// monthlyPattern matches fixed days of the month. A day absent from a given
// month (e.g. 31 in April) is skipped for that month. Excluded (month, day)
// pairs are skipped every year.
type monthlyPattern struct {
	days     []int
	excludes map[calendar.MonthDay]bool
}

// Monthly builds a sequence recurring on the given days of each month
// (1-31), minus the excluded days of the year.
func Monthly(days []int, excludes []calendar.MonthDay) (*Sequence, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: monthly sequence needs at least one day", ErrInvalidArgument)
	}
	seen := make(map[int]bool, len(days))
	p := monthlyPattern{
		days:     make([]int, 0, len(days)),
		excludes: make(map[calendar.MonthDay]bool, len(excludes)),
	}
	for _, day := range days {
		if day < 1 || day > 31 {
			return nil, fmt.Errorf("%w: day %d not in 1-31", ErrInvalidArgument, day)
		}
		if !seen[day] {
			seen[day] = true
			p.days = append(p.days, day)
		}
	}
	sort.Ints(p.days)
	for _, md := range excludes {
		if _, err := calendar.NewMonthDay(md.Month, md.Day); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		p.excludes[md] = true
	}
	if !p.anyAdmissible() {
		return nil, fmt.Errorf("%w: every occurrence of the monthly sequence is excluded", ErrInvalidArgument)
	}
	return &Sequence{pat: p}, nil
}

// anyAdmissible reports whether at least one (month, day) combination can
// ever produce a date. The pattern repeats over the year (modulo Feb 29,
// which recurs in leap years), so checking a single leap year suffices.
func (p monthlyPattern) anyAdmissible() bool {
	for month := time.January; month <= time.December; month++ {
		for _, day := range p.days {
			if calendar.DayExists(2000, month, day) && !p.excludes[calendar.MonthDay{Month: month, Day: day}] {
				return true
			}
		}
	}
	return false
}

func (p monthlyPattern) matches(d calendar.Date) bool {
	for _, day := range p.days {
		if day == d.Day {
			return true
		}
	}
	return false
}

func (p monthlyPattern) excluded(d calendar.Date) bool {
	return p.excludes[d.MonthDay()]
}

func (p monthlyPattern) candidates(from calendar.Date, dir direction) iter.Seq[calendar.Date] {
	if dir == forward {
		return func(yield func(calendar.Date) bool) {
			my := calendar.MonthInYear{Year: from.Year, Month: from.Month}
			for _, day := range p.days {
				if day > from.Day && my.Contains(day) && !yield(my.Date(day)) {
					return
				}
			}
			for {
				my = my.Next()
				for _, day := range p.days {
					if my.Contains(day) && !yield(my.Date(day)) {
						return
					}
				}
			}
		}
	}
	return func(yield func(calendar.Date) bool) {
		my := calendar.MonthInYear{Year: from.Year, Month: from.Month}
		for i := len(p.days) - 1; i >= 0; i-- {
			if day := p.days[i]; day < from.Day && my.Contains(day) && !yield(my.Date(day)) {
				return
			}
		}
		for {
			my = my.Previous()
			for i := len(p.days) - 1; i >= 0; i-- {
				if day := p.days[i]; my.Contains(day) && !yield(my.Date(day)) {
					return
				}
			}
		}
	}
}

func (p monthlyPattern) String() string {
	out := fmt.Sprintf("monthly on days %s", joinInts(p.days))
	if len(p.excludes) > 0 {
		out += fmt.Sprintf(" excluding %s", joinMonthDays(p.excludes))
	}
	return out
}

// =============================================================================
// Yearly
// =============================================================================

// yearlyPattern matches fixed (month, day) pairs of each year. The pair
// (2, 29) only matches in leap years. Excluded full dates are skipped.
type yearlyPattern struct {
	days     []calendar.MonthDay
	excludes map[calendar.Date]bool
}

// Yearly builds a sequence recurring on the given days of each year, minus
// the excluded dates.
func Yearly(days []calendar.MonthDay, excludes []calendar.Date) (*Sequence, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: yearly sequence needs at least one day", ErrInvalidArgument)
	}
	seen := make(map[calendar.MonthDay]bool, len(days))
	p := yearlyPattern{
		days:     make([]calendar.MonthDay, 0, len(days)),
		excludes: make(map[calendar.Date]bool, len(excludes)),
	}
	for _, md := range days {
		if _, err := calendar.NewMonthDay(md.Month, md.Day); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		if !seen[md] {
			seen[md] = true
			p.days = append(p.days, md)
		}
	}
	sort.Slice(p.days, func(i, j int) bool { return p.days[i].Compare(p.days[j]) < 0 })
	for _, d := range excludes {
		if !d.IsValid() {
			return nil, fmt.Errorf("%w: invalid excluded date %s", ErrInvalidArgument, d)
		}
		p.excludes[d] = true
	}
	// Excludes are a finite set of concrete dates while the positions recur
	// every year, so a yearly sequence can never be emptied by excludes.
	return &Sequence{pat: p}, nil
}

func (p yearlyPattern) matches(d calendar.Date) bool {
	md := d.MonthDay()
	for _, day := range p.days {
		if day == md {
			return true
		}
	}
	return false
}

func (p yearlyPattern) excluded(d calendar.Date) bool { return p.excludes[d] }

func (p yearlyPattern) candidates(from calendar.Date, dir direction) iter.Seq[calendar.Date] {
	fromMD := from.MonthDay()
	if dir == forward {
		return func(yield func(calendar.Date) bool) {
			year := from.Year
			for _, md := range p.days {
				if md.Compare(fromMD) > 0 && calendar.DayExists(year, md.Month, md.Day) {
					if !yield(calendar.Date{Year: year, Month: md.Month, Day: md.Day}) {
						return
					}
				}
			}
			for {
				year++
				for _, md := range p.days {
					if calendar.DayExists(year, md.Month, md.Day) {
						if !yield(calendar.Date{Year: year, Month: md.Month, Day: md.Day}) {
							return
						}
					}
				}
			}
		}
	}
	return func(yield func(calendar.Date) bool) {
		year := from.Year
		for i := len(p.days) - 1; i >= 0; i-- {
			md := p.days[i]
			if md.Compare(fromMD) < 0 && calendar.DayExists(year, md.Month, md.Day) {
				if !yield(calendar.Date{Year: year, Month: md.Month, Day: md.Day}) {
					return
				}
			}
		}
		for {
			year--
			for i := len(p.days) - 1; i >= 0; i-- {
				md := p.days[i]
				if calendar.DayExists(year, md.Month, md.Day) {
					if !yield(calendar.Date{Year: year, Month: md.Month, Day: md.Day}) {
						return
					}
				}
			}
		}
	}
}

func (p yearlyPattern) String() string {
	names := make([]string, len(p.days))
	for i, md := range p.days {
		names[i] = md.String()
	}
	out := "yearly on " + strings.Join(names, ", ")
	if len(p.excludes) > 0 {
		out += fmt.Sprintf(" (%d excluded dates)", len(p.excludes))
	}
	return out
}

// =============================================================================
// Formatting helpers
// =============================================================================

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func joinInts(days []int) string {
	parts := make([]string, len(days))
	for i, day := range days {
		parts[i] = fmt.Sprint(day)
	}
	return strings.Join(parts, ", ")
}

func joinMonthDays(m map[calendar.MonthDay]bool) string {
	mds := make([]calendar.MonthDay, 0, len(m))
	for md := range m {
		mds = append(mds, md)
	}
	sort.Slice(mds, func(i, j int) bool { return mds[i].Compare(mds[j]) < 0 })
	parts := make([]string, len(mds))
	for i, md := range mds {
		parts[i] = md.String()
	}
	return strings.Join(parts, ", ")
}
