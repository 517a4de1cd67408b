package account

import "time"

// Usage reports how much of the monthly free-tier allowance is consumed.
type Usage struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

func NewUsage(used, limit int) Usage {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	return Usage{Used: used, Limit: limit, Remaining: remaining}
}

// NeedsUsageReset reports whether the counter stamped at last belongs to a
// different calendar month than now. A missing stamp always needs a reset.
// Months are compared in UTC.
func NeedsUsageReset(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}

	l, n := last.UTC(), now.UTC()

	return l.Year() != n.Year() || l.Month() != n.Month()
}

// MonthBounds returns the half-open UTC window [start, end) of now's month.
func MonthBounds(now time.Time) (time.Time, time.Time) {
	n := now.UTC()
	start := time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC)

	return start, start.AddDate(0, 1, 0)
}
