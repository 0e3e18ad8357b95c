// Package core holds the pure financial domain: records, aggregation,
// filtering and budget arithmetic. Nothing in this package touches storage,
// HTTP or the clock beyond values passed in.
package core

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Totals is the derived income/expense/balance summary of a transaction set.
type Totals struct {
	Income  float64
	Expense float64
	Balance float64
}

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Category string
	Amount   float64
}

// CalculateTotals sums amounts by type over the whole set.
// Balance is income minus expense.
func CalculateTotals(txns []Transaction) Totals {
	var t Totals
	for _, txn := range txns {
		switch txn.Type {
		case Income:
			t.Income += float64(txn.Amount)
		case Expense:
			t.Expense += float64(txn.Amount)
		}
	}
	t.Balance = t.Income - t.Expense
	return t
}

// CategoryTotals accumulates per-category sums for transactions of the given
// type. Categories appear in first-seen order; that ordering is stable but
// carries no meaning beyond giving charts and legends a shared iteration
// order.
func CategoryTotals(txns []Transaction, t TransactionType) []CategoryAmount {
	index := make(map[string]int)
	var out []CategoryAmount
	for _, txn := range txns {
		if txn.Type != t {
			continue
		}
		if i, ok := index[txn.Category]; ok {
			out[i].Amount += float64(txn.Amount)
			continue
		}
		index[txn.Category] = len(out)
		out = append(out, CategoryAmount{Category: txn.Category, Amount: float64(txn.Amount)})
	}
	return out
}

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an amount as USD with two decimals and grouped
// thousands, e.g. "$1,234.56". Negative values render as "-$1,234.56".
// NaN and infinities render best-effort rather than erroring.
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) {
		return "$NaN"
	}
	if math.Signbit(amount) {
		return "-$" + currencyPrinter.Sprintf("%.2f", -amount)
	}
	return "$" + currencyPrinter.Sprintf("%.2f", amount)
}

// FormatDate renders a date as "Jan 2, 2006" style.
func FormatDate(d Date) string {
	return d.Format("Jan 2, 2006")
}
