package content

import "time"

// Age is a child's age used for band resolution. Months is always known;
// Weeks is negative when only the month count is available.
type Age struct {
	Months int
	Weeks  int
}

// MonthsOnly builds an Age for callers that only know the month count.
func MonthsOnly(months int) Age {
	return Age{Months: months, Weeks: -1}
}

// HasWeeks reports whether the weeks component is known.
func (a Age) HasWeeks() bool {
	return a.Weeks >= 0
}

// approxWeeks returns Weeks when known, otherwise an estimate from Months
// (13 weeks per 3 months), used only for band reachability.
func (a Age) approxWeeks() int {
	if a.HasWeeks() {
		return a.Weeks
	}
	return a.Months * 13 / 3
}

// AgeAt computes a child's age on the calendar date of today.
//
// Both units round up: any day elapsed past the last completed month
// anniversary counts as a full month, and any day past the last completed
// week counts as a full week. Birth 2024-01-15 and today 2024-02-16 gives
// 2 months. A today on or before birth yields zero.
func AgeAt(birth, today time.Time) Age {
	b := dateOf(birth)
	t := dateOf(today)
	if !t.After(b) {
		return Age{}
	}

	months := (t.Year()-b.Year())*12 + int(t.Month()-b.Month())
	if addMonthsClamped(b, months).After(t) {
		months--
	}
	if addMonthsClamped(b, months).Before(t) {
		months++
	}

	days := int(t.Sub(b).Hours() / 24)
	weeks := (days + 6) / 7

	return Age{Months: months, Weeks: weeks}
}

// dateOf truncates t to its calendar date, expressed in UTC so that day
// arithmetic is not affected by DST transitions.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// addMonthsClamped adds n months to d, clamping the day to the last day of
// the target month (Jan 31 + 1 month = Feb 28/29).
func addMonthsClamped(d time.Time, n int) time.Time {
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}
