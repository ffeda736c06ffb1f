// Package calendar computes working-day counts for leave requests.
// Weekends and company holidays do not count as leave days.
package calendar

import "time"

const dateLayout = "2006-01-02"

// DateSet is a lookup set of calendar dates keyed by their ISO form.
type DateSet map[string]struct{}

func NewDateSet(dates ...time.Time) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

func (s DateSet) Add(d time.Time) {
	s[d.Format(dateLayout)] = struct{}{}
}

func (s DateSet) Has(d time.Time) bool {
	_, ok := s[d.Format(dateLayout)]
	return ok
}

// BusinessDays counts the days in the inclusive range [start, end] that
// fall on Monday through Friday and are not in the holiday set. A range
// consisting only of weekends and holidays yields 0; whether that is
// acceptable is the caller's policy decision, not ours.
func BusinessDays(start, end time.Time, holidays DateSet) int {
	if end.Before(start) {
		return 0
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if holidays.Has(d) {
			continue
		}
		days++
	}
	return days
}
