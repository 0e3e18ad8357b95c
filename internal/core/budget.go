package core

import (
	"math"
	"time"
)

// BudgetLevel classifies the current month's spending against the budget.
type BudgetLevel string

const (
	BudgetNominal  BudgetLevel = "nominal"
	BudgetWarning  BudgetLevel = "warning"
	BudgetExceeded BudgetLevel = "exceeded"

	budgetWarningPercent  = 80
	budgetExceededPercent = 100
)

// BudgetStatus is the evaluated budget progress for the current month.
// RawPercent is unclamped and drives classification; DisplayPercent is
// clamped to 100 for bounded progress bars.
type BudgetStatus struct {
	Spent          float64
	Budget         float64
	RawPercent     float64
	DisplayPercent float64
	Level          BudgetLevel
}

// EvaluateBudget computes spend-vs-budget progress. A zero budget with any
// spending classifies as exceeded (the ratio is taken as +Inf); a zero budget
// with zero spending is nominal at 0%.
func EvaluateBudget(spent, budget float64) BudgetStatus {
	st := BudgetStatus{Spent: spent, Budget: budget}
	switch {
	case budget > 0:
		st.RawPercent = spent / budget * 100
	case spent > 0:
		st.RawPercent = math.Inf(1)
	}

	st.DisplayPercent = st.RawPercent
	if st.DisplayPercent > 100 {
		st.DisplayPercent = 100
	}

	switch {
	case st.RawPercent >= budgetExceededPercent:
		st.Level = BudgetExceeded
	case st.RawPercent >= budgetWarningPercent:
		st.Level = BudgetWarning
	default:
		st.Level = BudgetNominal
	}
	return st
}

// MonthExpenseTotal sums expense transactions dated in the same calendar
// month and year as now.
func MonthExpenseTotal(txns []Transaction, now time.Time) float64 {
	month := FilterTransactions(txns, ReportFilter{Period: PeriodThisMonth, Category: CategoryAll}, now)
	return CalculateTotals(month).Expense
}
