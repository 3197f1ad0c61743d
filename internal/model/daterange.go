package model

import (
	"errors"
	"fmt"
	"time"
)

// DefaultDays is the look-back window used when no explicit range is given.
const DefaultDays = 30

// ErrInvalidRange is returned for unparsable or inverted date ranges.
var ErrInvalidRange = errors.New("invalid date range")

// DateRange is an inclusive pair of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " ~ " + r.End.Format(DateLayout)
}

// Contains reports whether t falls on a calendar day within r.
func (r DateRange) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// NewDateRange builds a range and rejects start after end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start, end = truncateDay(start), truncateDay(end)
	if start.After(end) {
		return DateRange{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			start.Format(DateLayout), end.Format(DateLayout))
	}
	return DateRange{Start: start, End: end}, nil
}

// LastDays is the range of the last n calendar days ending on now.
func LastDays(n int, now time.Time) DateRange {
	end := truncateDay(now)
	return DateRange{Start: end.AddDate(0, 0, -n), End: end}
}

// ResolveRange turns optional start/end flags (YYYY-MM-DD) and a day count into a range.
// Without start and end the range is the last days days. With only an end it is the
// days days before end. With only a start it runs to now.
func ResolveRange(start, end string, days int, now time.Time) (DateRange, error) {
	if days <= 0 {
		days = DefaultDays
	}
	switch {
	case start == "" && end == "":
		return LastDays(days, now), nil
	case start == "":
		e, err := parseDate(end)
		if err != nil {
			return DateRange{}, err
		}
		return NewDateRange(e.AddDate(0, 0, -days), e)
	case end == "":
		s, err := parseDate(start)
		if err != nil {
			return DateRange{}, err
		}
		return NewDateRange(s, now)
	default:
		s, err := parseDate(start)
		if err != nil {
			return DateRange{}, err
		}
		e, err := parseDate(end)
		if err != nil {
			return DateRange{}, err
		}
		return NewDateRange(s, e)
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidRange, s)
	}
	return t, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
