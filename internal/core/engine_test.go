package core

import (
	"testing"
)

func sampleLedger() []Transaction {
	return []Transaction{
		{ID: "a", Type: Income, Amount: 3000, Category: "Salary", Date: NewDate(2025, 6, 1)},
		{ID: "b", Type: Expense, Amount: 120.50, Category: "Food", Date: NewDate(2025, 6, 3)},
		{ID: "c", Type: Expense, Amount: 80, Category: "Transport", Date: NewDate(2025, 6, 5)},
		{ID: "d", Type: Expense, Amount: 60.25, Category: "Food", Date: NewDate(2025, 6, 9)},
		{ID: "e", Type: Income, Amount: 250, Category: "Freelance", Date: NewDate(2025, 6, 12)},
	}
}

func TestCalculateTotals(t *testing.T) {
	got := CalculateTotals(sampleLedger())
	if got.Income != 3250 {
		t.Errorf("income: got %v, want 3250", got.Income)
	}
	if got.Expense != 260.75 {
		t.Errorf("expense: got %v, want 260.75", got.Expense)
	}
	if got.Balance != got.Income-got.Expense {
		t.Errorf("balance %v != income-expense %v", got.Balance, got.Income-got.Expense)
	}
}

func TestCalculateTotalsEmpty(t *testing.T) {
	got := CalculateTotals(nil)
	if got.Income != 0 || got.Expense != 0 || got.Balance != 0 {
		t.Fatalf("empty set should be all zero, got %+v", got)
	}
}

func TestCategoryTotalsFirstSeenOrder(t *testing.T) {
	got := CategoryTotals(sampleLedger(), Expense)
	want := []CategoryAmount{
		{Category: "Food", Amount: 180.75},
		{Category: "Transport", Amount: 80},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCategoryTotalsMatchesTotals(t *testing.T) {
	ledger := sampleLedger()
	for _, typ := range []TransactionType{Income, Expense} {
		var sum float64
		for _, ca := range CategoryTotals(ledger, typ) {
			sum += ca.Amount
		}
		totals := CalculateTotals(ledger)
		want := totals.Income
		if typ == Expense {
			want = totals.Expense
		}
		if sum != want {
			t.Errorf("%s: category sum %v != total %v", typ, sum, want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{2000, "$2,000.00"},
		{1234567.891, "$1,234,567.89"},
		{12.5, "$12.50"},
		{-95.2, "-$95.20"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(NewDate(2024, 1, 5)); got != "Jan 5, 2024" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDate(NewDate(2025, 12, 31)); got != "Dec 31, 2025" {
		t.Fatalf("got %q", got)
	}
}
