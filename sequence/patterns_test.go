package sequence

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ecmwf/earthkit-time/calendar"
)

func TestDaily_Validation(t *testing.T) {
	if _, err := Daily([]int{0}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Daily with day 0: %v, want ErrInvalidArgument", err)
	}
	if _, err := Daily([]int{32}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Daily with day 32: %v, want ErrInvalidArgument", err)
	}

	all := make([]int, 31)
	for i := range all {
		all[i] = i + 1
	}
	if _, err := Daily(all); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Daily with all days excluded: %v, want ErrInvalidArgument", err)
	}
}

func TestWeekly_Validation(t *testing.T) {
	if _, err := Weekly(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Weekly with no days: %v, want ErrInvalidArgument", err)
	}
	if _, err := Weekly([]calendar.Weekday{7}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Weekly with day 7: %v, want ErrInvalidArgument", err)
	}
	if _, err := Weekly([]calendar.Weekday{-1}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Weekly with day -1: %v, want ErrInvalidArgument", err)
	}
}

func TestWeekly_DuplicatesIgnored(t *testing.T) {
	seq, err := Weekly([]calendar.Weekday{calendar.Friday, calendar.Monday, calendar.Friday})
	if err != nil {
		t.Fatal(err)
	}
	got, err := seq.Next(date(t, "20240510"), false, 0) // Friday
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "20240513" {
		t.Errorf("Next = %s, want 20240513 (Monday)", got)
	}
	if want := "weekly on Monday, Friday"; seq.String() != want {
		t.Errorf("String() = %q, want %q", seq.String(), want)
	}
}

func TestMonthly_Validation(t *testing.T) {
	if _, err := Monthly(nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Monthly with no days: %v, want ErrInvalidArgument", err)
	}
	if _, err := Monthly([]int{0}, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Monthly with day 0: %v, want ErrInvalidArgument", err)
	}
	if _, err := Monthly([]int{15}, []calendar.MonthDay{{Month: time.April, Day: 31}}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Monthly with invalid exclude: %v, want ErrInvalidArgument", err)
	}
}

func TestMonthly_AllOccurrencesExcluded(t *testing.T) {
	excludes := make([]calendar.MonthDay, 0, 12)
	for month := time.January; month <= time.December; month++ {
		excludes = append(excludes, calendar.MonthDay{Month: month, Day: 15})
	}
	if _, err := Monthly([]int{15}, excludes); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("fully excluded monthly sequence: %v, want ErrInvalidArgument", err)
	}
}

func TestMonthly_ExcludeSkipped(t *testing.T) {
	seq, err := Monthly([]int{29}, []calendar.MonthDay{{Month: time.February, Day: 29}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := seq.Next(date(t, "20240130"), false, 0)
	if err != nil {
		t.Fatal(err)
	}
	// 2024-02-29 exists but is excluded.
	if got.String() != "20240329" {
		t.Errorf("Next = %s, want 20240329", got)
	}
}

func TestMonthly_BackwardAcrossYear(t *testing.T) {
	seq, err := Monthly([]int{5, 20}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := seq.Previous(date(t, "20240103"), false, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "20231220" {
		t.Errorf("Previous = %s, want 20231220", got)
	}
}

func TestYearly_Validation(t *testing.T) {
	if _, err := Yearly(nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Yearly with no days: %v, want ErrInvalidArgument", err)
	}
	if _, err := Yearly([]calendar.MonthDay{{Month: time.April, Day: 31}}, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Yearly with invalid day: %v, want ErrInvalidArgument", err)
	}
	if _, err := Yearly([]calendar.MonthDay{{Month: time.June, Day: 1}}, []calendar.Date{{Year: 2023, Month: time.February, Day: 29}}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Yearly with invalid exclude: %v, want ErrInvalidArgument", err)
	}
}

func TestYearly_Excludes(t *testing.T) {
	day := calendar.MonthDay{Month: time.June, Day: 1}
	seq, err := Yearly([]calendar.MonthDay{day}, []calendar.Date{{Year: 2025, Month: time.June, Day: 1}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := seq.Next(date(t, "20240801"), false, 0)
	if err != nil {
		t.Fatal(err)
	}
	// 2025-06-01 is excluded, so the next occurrence is a year later.
	if got.String() != "20260601" {
		t.Errorf("Next = %s, want 20260601", got)
	}
}

func TestYearly_MultipleDaysOrder(t *testing.T) {
	days := []calendar.MonthDay{
		{Month: time.October, Day: 1},
		{Month: time.March, Day: 15},
	}
	seq, err := Yearly(days, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := seq.Range(date(t, "20240101"), date(t, "20241231"), true, true)
	if err != nil {
		t.Fatal(err)
	}
	checkDates(t, got, "20240315", "20241001")
}

func TestPatternStrings(t *testing.T) {
	daily, err := Daily([]int{5, 1})
	if err != nil {
		t.Fatal(err)
	}
	if got := daily.String(); !strings.Contains(got, "1, 5") {
		t.Errorf("daily String() = %q, want sorted excludes", got)
	}

	monthlySeq, err := Monthly([]int{15, 1}, []calendar.MonthDay{{Month: time.February, Day: 29}})
	if err != nil {
		t.Fatal(err)
	}
	if got := monthlySeq.String(); !strings.Contains(got, "1, 15") || !strings.Contains(got, "0229") {
		t.Errorf("monthly String() = %q", got)
	}
}
