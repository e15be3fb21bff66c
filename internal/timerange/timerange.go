// Package timerange expands a date (or date range) plus an optional
// time-of-day window into the ordered sequence of instants to request.
package timerange

import (
	"fmt"
	"iter"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// InvalidRangeError reports a date/time specification that cannot be
// expanded. It is always raised before any network activity.
type InvalidRangeError struct {
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return "invalid time range: " + e.Reason
}

// DateSpec selects the instants to download. Start and End are inclusive
// calendar dates (UTC midnights). WindowStart and WindowEnd are minutes of
// day; Step is the stride in minutes between instants within the window.
// A window of (0,0) means exactly one instant per date, at midnight.
type DateSpec struct {
	Start       time.Time
	End         time.Time
	WindowStart int
	WindowEnd   int
	Step        int
}

// ParseDates parses the -d argument accepted by all product commands:
// either "YYYYMMDD" or "YYYYMMDD-YYYYMMDD" (inclusive range).
func ParseDates(arg string) (start, end time.Time, err error) {
	parse := func(s string) (time.Time, error) {
		t, perr := time.ParseInLocation("20060102", s, time.UTC)
		if perr != nil {
			return time.Time{}, &InvalidRangeError{Reason: fmt.Sprintf("bad date %q, want YYYYMMDD", s)}
		}
		return t, nil
	}

	if first, rest, found := strings.Cut(arg, "-"); found {
		if start, err = parse(first); err != nil {
			return time.Time{}, time.Time{}, err
		}
		if end, err = parse(rest); err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, end, nil
	}

	start, err = parse(arg)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start, nil
}

// New builds a DateSpec from a parsed -d argument and window flags and
// validates it.
func New(dateArg string, windowStart, windowEnd, step int) (DateSpec, error) {
	start, end, err := ParseDates(dateArg)
	if err != nil {
		return DateSpec{}, err
	}
	spec := DateSpec{
		Start:       start,
		End:         end,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Step:        step,
	}
	if err := spec.Validate(); err != nil {
		return DateSpec{}, err
	}
	return spec, nil
}

// Validate checks the DateSpec invariants.
func (s DateSpec) Validate() error {
	if s.Start.After(s.End) {
		return &InvalidRangeError{Reason: fmt.Sprintf("start date %s is after end date %s",
			s.Start.Format("20060102"), s.End.Format("20060102"))}
	}
	if s.WindowStart < 0 || s.WindowStart >= minutesPerDay {
		return &InvalidRangeError{Reason: fmt.Sprintf("window start %d outside [0,%d)", s.WindowStart, minutesPerDay)}
	}
	if s.WindowEnd < 0 || s.WindowEnd >= minutesPerDay {
		return &InvalidRangeError{Reason: fmt.Sprintf("window end %d outside [0,%d)", s.WindowEnd, minutesPerDay)}
	}
	if s.WindowEnd < s.WindowStart {
		return &InvalidRangeError{Reason: fmt.Sprintf("window end %d before window start %d", s.WindowEnd, s.WindowStart)}
	}
	if s.WindowEnd > s.WindowStart && s.Step <= 0 {
		return &InvalidRangeError{Reason: fmt.Sprintf("step %d must be positive for a non-degenerate window", s.Step)}
	}
	return nil
}

// Timestamps returns the instants selected by the spec in ascending order.
// The sequence is lazy and restartable: each range over it re-walks the
// full spec.
func (s DateSpec) Timestamps() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for day := s.Start; !day.After(s.End); day = day.AddDate(0, 0, 1) {
			if s.WindowEnd == s.WindowStart {
				if !yield(day.Add(time.Duration(s.WindowStart) * time.Minute)) {
					return
				}
				continue
			}
			for m := s.WindowStart; m <= s.WindowEnd; m += s.Step {
				if !yield(day.Add(time.Duration(m) * time.Minute)) {
					return
				}
			}
		}
	}
}

// Count returns the total number of instants the spec expands to.
func (s DateSpec) Count() int {
	days := int(s.End.Sub(s.Start).Hours()/24) + 1
	perDay := 1
	if s.WindowEnd > s.WindowStart {
		perDay = (s.WindowEnd-s.WindowStart)/s.Step + 1
	}
	return days * perDay
}
