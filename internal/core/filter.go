package core

import (
	"fmt"
	"time"
)

// Period narrows transactions to a calendar window relative to a reference
// "now".
type Period string

const (
	PeriodAll       Period = "all"
	PeriodThisMonth Period = "this-month"
	PeriodLastMonth Period = "last-month"
	PeriodThisYear  Period = "this-year"
)

// CategoryAll is the category selector matching every category.
const CategoryAll = "all"

// ParsePeriod validates a period selector string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodAll, PeriodThisMonth, PeriodLastMonth, PeriodThisYear:
		return Period(s), nil
	case "":
		return PeriodAll, nil
	}
	return "", fmt.Errorf("invalid period %q", s)
}

// ReportFilter combines a period window and a category selector. The two
// predicates are independent and AND-combined; the period is applied first.
type ReportFilter struct {
	Period   Period
	Category string
}

// periodBounds returns the half-open [start, end) window for a period.
// Month arithmetic goes through AddDate, so last-month in January lands in
// December of the previous year.
func periodBounds(p Period, now time.Time) (time.Time, time.Time, bool) {
	switch p {
	case PeriodThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), true
	case PeriodLastMonth:
		end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return end.AddDate(0, -1, 0), end, true
	case PeriodThisYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// FilterTransactions returns the subset of txns matching the filter, in the
// original order. With period=all and category=all the result equals the
// input set.
func FilterTransactions(txns []Transaction, f ReportFilter, now time.Time) []Transaction {
	start, end, bounded := periodBounds(f.Period, now)
	byCategory := f.Category != "" && f.Category != CategoryAll

	out := make([]Transaction, 0, len(txns))
	for _, txn := range txns {
		if bounded {
			d := txn.Date.Time
			if d.Before(start) || !d.Before(end) {
				continue
			}
		}
		if byCategory && txn.Category != f.Category {
			continue
		}
		out = append(out, txn)
	}
	return out
}
