package compilation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	// ErrInvalidMonthYear is returned for input not in mm/yyyy form or with a month outside 1-12
	ErrInvalidMonthYear = errors.New("invalid date format, use mm/yyyy")
	// ErrInvertedRange is returned when the start bound is after the end bound
	ErrInvertedRange = errors.New("from must be <= to")
)

var monthYearPattern = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)

// DateRange is an inclusive publication window. A nil bound is unbounded.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// NewDateRange creates a range, rejecting start > end
func NewDateRange(start, end *time.Time) (DateRange, error) {
	if start != nil && end != nil && start.After(*end) {
		return DateRange{}, ErrInvertedRange
	}
	return DateRange{Start: start, End: end}, nil
}

// IsEmpty reports whether neither bound is set
func (r DateRange) IsEmpty() bool {
	return r.Start == nil && r.End == nil
}

// Includes decides whether a post dated publishedAt belongs in the range.
// An empty range includes everything; a non-empty range never includes an
// unknown date.
func (r DateRange) Includes(publishedAt *time.Time) bool {
	if r.IsEmpty() {
		return true
	}
	if publishedAt == nil {
		return false
	}
	if r.Start != nil && publishedAt.Before(*r.Start) {
		return false
	}
	if r.End != nil && publishedAt.After(*r.End) {
		return false
	}
	return true
}

// String renders the range for logs
func (r DateRange) String() string {
	format := func(t *time.Time) string {
		if t == nil {
			return "*"
		}
		return t.UTC().Format(TimestampLayout)
	}
	return fmt.Sprintf("[%s, %s]", format(r.Start), format(r.End))
}

// ParseMonthYear parses "m/yyyy" or "mm/yyyy" into the first and last
// instants of that calendar month in UTC.
func ParseMonthYear(input string) (start, end time.Time, err error) {
	matches := monthYearPattern.FindStringSubmatch(input)
	if matches == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%q: %w", input, ErrInvalidMonthYear)
	}

	month, _ := strconv.Atoi(matches[1])
	year, _ := strconv.Atoi(matches[2])
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%q: %w", input, ErrInvalidMonthYear)
	}

	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this one
	end = time.Date(year, time.Month(month)+1, 0, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	return start, end, nil
}

// RangeFromMonthYears builds a DateRange from optional from/to inputs.
// An empty input leaves that side unbounded.
func RangeFromMonthYears(from, to string) (DateRange, error) {
	var start, end *time.Time

	if from != "" {
		s, _, err := ParseMonthYear(from)
		if err != nil {
			return DateRange{}, err
		}
		start = &s
	}

	if to != "" {
		_, e, err := ParseMonthYear(to)
		if err != nil {
			return DateRange{}, err
		}
		end = &e
	}

	return NewDateRange(start, end)
}
