// Package sequence implements recurring patterns of calendar dates and the
// query operations over them: membership, previous/next, nearest, range and
// bracket. A Sequence is immutable after construction and safe for
// concurrent use.
package sequence

import (
	"errors"
	"fmt"
	"iter"

	"github.com/ecmwf/earthkit-time/calendar"
)

// ErrInvalidArgument is returned (wrapped) for malformed or contradictory
// parameters: negative counts, reversed ranges, unknown resolve values, or
// sequence descriptions that violate the construction invariants.
var ErrInvalidArgument = errors.New("invalid argument")

// direction of candidate stepping.
type direction int

const (
	forward  direction = 1
	backward direction = -1
)

// pattern is the granularity-specific recurrence rule behind a Sequence.
// Implementations exist for daily, weekly, monthly and yearly recurrence.
type pattern interface {
	// matches reports whether the date satisfies the pattern's positions,
	// ignoring the exclusion filter.
	matches(d calendar.Date) bool

	// excluded reports whether the date is removed by the exclusion filter.
	excluded(d calendar.Date) bool

	// candidates yields an infinite stream of dates matching the pattern's
	// positions, strictly beyond from in the given direction. Excludes are
	// not applied. Implementations jump period to period in closed form
	// rather than scanning individual days.
	candidates(from calendar.Date, dir direction) iter.Seq[calendar.Date]

	fmt.Stringer
}

// Resolve selects the tie-breaking side for Nearest.
type Resolve string

const (
	ResolvePrevious Resolve = "previous"
	ResolveNext     Resolve = "next"
)

// Sequence wraps a recurrence pattern and exposes the query operations.
// Construct one with Daily, Weekly, Monthly, Yearly or FromMap.
type Sequence struct {
	pat pattern
}

// Contains reports whether the date belongs to the sequence.
func (s *Sequence) Contains(d calendar.Date) bool {
	return s.pat.matches(d) && !s.pat.excluded(d)
}

// step returns the first sequence member strictly beyond from in the given
// direction. Construction guarantees at least one non-excluded occurrence
// exists per covering period, so the walk always terminates.
func (s *Sequence) step(from calendar.Date, dir direction) calendar.Date {
	for c := range s.pat.candidates(from, dir) {
		if !s.pat.excluded(c) {
			return c
		}
	}
	panic("sequence: candidate stream ended") // candidates are infinite
}

// Next returns the first date of the sequence after ref, or ref itself when
// inclusive is set and ref is a member. A non-zero skip moves the result
// forward by that many further occurrences.
func (s *Sequence) Next(ref calendar.Date, inclusive bool, skip int) (calendar.Date, error) {
	return s.seek(ref, forward, inclusive, skip)
}

// Previous returns the last date of the sequence before ref, or ref itself
// when inclusive is set and ref is a member. A non-zero skip moves the
// result backward by that many further occurrences.
func (s *Sequence) Previous(ref calendar.Date, inclusive bool, skip int) (calendar.Date, error) {
	return s.seek(ref, backward, inclusive, skip)
}

func (s *Sequence) seek(ref calendar.Date, dir direction, inclusive bool, skip int) (calendar.Date, error) {
	if skip < 0 {
		return calendar.Date{}, fmt.Errorf("%w: skip must be non-negative, got %d", ErrInvalidArgument, skip)
	}
	cur := ref
	if !inclusive || !s.Contains(ref) {
		cur = s.step(ref, dir)
	}
	for i := 0; i < skip; i++ {
		cur = s.step(cur, dir)
	}
	return cur, nil
}

// Nearest returns the member of the sequence closest to ref. If ref itself
// is a member it is returned. On an exact distance tie, resolve picks the
// side: ResolvePrevious or ResolveNext.
func (s *Sequence) Nearest(ref calendar.Date, resolve Resolve) (calendar.Date, error) {
	if resolve != ResolvePrevious && resolve != ResolveNext {
		return calendar.Date{}, fmt.Errorf("%w: unknown resolve value %q", ErrInvalidArgument, resolve)
	}
	if s.Contains(ref) {
		return ref, nil
	}
	prev := s.step(ref, backward)
	next := s.step(ref, forward)
	dp := ref.Sub(prev)
	dn := next.Sub(ref)
	switch {
	case dp < dn:
		return prev, nil
	case dn < dp:
		return next, nil
	case resolve == ResolveNext:
		return next, nil
	default:
		return prev, nil
	}
}

// Range returns all members of the sequence between start and end in
// ascending order. includeStart and includeEnd control whether the
// boundaries themselves are eligible. An empty result is valid.
func (s *Sequence) Range(start, end calendar.Date, includeStart, includeEnd bool) ([]calendar.Date, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date %s after end date %s", ErrInvalidArgument, start, end)
	}
	var out []calendar.Date
	cur := start
	if !includeStart || !s.Contains(start) {
		cur = s.step(start, forward)
	}
	for cur.Before(end) || (cur == end && includeEnd) {
		out = append(out, cur)
		cur = s.step(cur, forward)
	}
	return out, nil
}

// Bracket returns, in ascending order, the before members strictly
// preceding ref and the after members strictly following it. When inclusive
// is set and ref is a member, ref appears between the two groups without
// counting against either.
func (s *Sequence) Bracket(ref calendar.Date, before, after int, inclusive bool) ([]calendar.Date, error) {
	if before < 0 || after < 0 {
		return nil, fmt.Errorf("%w: bracket counts must be non-negative, got (%d, %d)", ErrInvalidArgument, before, after)
	}
	out := make([]calendar.Date, before, before+after+1)
	cur := ref
	for i := before - 1; i >= 0; i-- {
		cur = s.step(cur, backward)
		out[i] = cur
	}
	if inclusive && s.Contains(ref) {
		out = append(out, ref)
	}
	cur = ref
	for i := 0; i < after; i++ {
		cur = s.step(cur, forward)
		out = append(out, cur)
	}
	return out, nil
}

// String describes the sequence, e.g. "weekly on Monday, Thursday".
func (s *Sequence) String() string {
	return s.pat.String()
}
