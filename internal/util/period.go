package util

import (
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
)

// PeriodEnd returns the inclusive end date for a budget that starts on
// start and runs for the given preset period. The second return value is
// false for the custom period, which carries an explicit end date.
func PeriodEnd(start time.Time, period domain.BudgetPeriod) (time.Time, bool) {
	switch period {
	case domain.BudgetPeriodWeekly:
		return start.AddDate(0, 0, 6), true
	case domain.BudgetPeriodMonthly:
		return start.AddDate(0, 1, 0).AddDate(0, 0, -1), true
	case domain.BudgetPeriodQuarterly:
		return start.AddDate(0, 3, 0).AddDate(0, 0, -1), true
	case domain.BudgetPeriodBiannual:
		return start.AddDate(0, 6, 0).AddDate(0, 0, -1), true
	case domain.BudgetPeriodAnnual:
		return start.AddDate(1, 0, 0).AddDate(0, 0, -1), true
	}
	return time.Time{}, false
}

// InInterval reports whether date falls within [start, end], inclusive
// on both ends.
func InInterval(date, start, end time.Time) bool {
	return !date.Before(start) && !date.After(end)
}

// TruncateToDay normalizes a timestamp to midnight UTC. Transaction and
// budget dates are stored at day precision.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
