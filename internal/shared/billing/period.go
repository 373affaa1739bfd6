// Package billing provides billing-period calendar arithmetic.
// A billing period runs from the 26th of one month through the 25th of the
// next, and is labeled by the month that contains the 25th. All boundaries
// are plain dates; time-of-day never participates.
package billing

import (
	"fmt"
	"sort"
	"time"
)

const cutoverDay = 26

// Period is a single billing period, [Start, End] inclusive on both ends.
type Period struct {
	Start time.Time
	End   time.Time
}

// PeriodFor returns the billing period that contains the given date.
func PeriodFor(d time.Time) Period {
	year, month, day := d.Date()

	if day >= cutoverDay {
		start := time.Date(year, month, cutoverDay, 0, 0, 0, 0, time.UTC)
		end := time.Date(year, month+1, 25, 0, 0, 0, 0, time.UTC)
		return Period{Start: start, End: end}
	}

	start := time.Date(year, month-1, cutoverDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, month, 25, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: end}
}

// Current returns the billing period containing now.
func Current(now time.Time) Period {
	return PeriodFor(now)
}

// Month returns the month the period is labeled by: the one containing the 25th.
func (p Period) Month() time.Month {
	return p.End.Month()
}

// Year returns the year the period is labeled by.
func (p Period) Year() int {
	return p.End.Year()
}

// Number returns the period's ordinal within its labeled year (1..12).
func (p Period) Number() int {
	return int(p.End.Month())
}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(d time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(p.Start) && !day.After(p.End)
}

// Label renders the period for display, "26/07 a 25/08" or
// "26/07/2025 a 25/08/2025" with withYear.
func (p Period) Label(withYear bool) string {
	layout := "02/01"
	if withYear {
		layout = "02/01/2006"
	}
	return fmt.Sprintf("%s a %s", p.Start.Format(layout), p.End.Format(layout))
}

// PeriodsForYear enumerates the billing periods of a labeled year.
//
// For past years all twelve periods exist. For the year of now, only the
// periods actually touched by the supplied processing dates are returned, so
// the caller does not present empty future periods. Dates outside the target
// year are ignored. Results are sorted by start date, newest first.
func PeriodsForYear(year int, now time.Time, processingDates []time.Time) []Period {
	currentYear := Current(now).Start.Year()

	var periods []Period
	if year == currentYear {
		seen := make(map[time.Time]bool)
		for _, d := range processingDates {
			p := PeriodFor(d)
			if p.Start.Year() != year {
				continue
			}
			if !seen[p.Start] {
				seen[p.Start] = true
				periods = append(periods, p)
			}
		}
	} else {
		for month := time.January; month <= time.December; month++ {
			end := time.Date(year, month, 25, 0, 0, 0, 0, time.UTC)
			periods = append(periods, PeriodFor(end))
		}
	}

	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Start.After(periods[j].Start)
	})
	return periods
}

// UniquePeriods maps each processing date to its billing period and returns
// the distinct periods, newest first.
func UniquePeriods(processingDates []time.Time) []Period {
	seen := make(map[time.Time]bool)
	var periods []Period
	for _, d := range processingDates {
		p := PeriodFor(d)
		if !seen[p.Start] {
			seen[p.Start] = true
			periods = append(periods, p)
		}
	}

	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Start.After(periods[j].Start)
	})
	return periods
}

// EnsureCurrent prepends the current period when it is not already present.
// Dashboards always offer the running period even before its first record.
func EnsureCurrent(periods []Period, now time.Time) []Period {
	current := Current(now)
	for _, p := range periods {
		if p.Start.Equal(current.Start) && p.End.Equal(current.End) {
			return periods
		}
	}
	return append([]Period{current}, periods...)
}
