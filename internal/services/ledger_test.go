package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tally/internal/core"
)

// memStore is an in-memory Store for exercising the ledger without sqlite.
type memStore struct {
	txns     []core.Transaction
	settings *core.Settings
	saves    int
}

func (m *memStore) LoadTransactions(context.Context) ([]core.Transaction, error) {
	out := make([]core.Transaction, len(m.txns))
	copy(out, m.txns)
	return out, nil
}

func (m *memStore) SaveTransactions(_ context.Context, txns []core.Transaction) error {
	m.txns = txns
	m.saves++
	return nil
}

func (m *memStore) LoadSettings(context.Context) (core.Settings, error) {
	if m.settings == nil {
		return core.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *memStore) SaveSettings(_ context.Context, st core.Settings) error {
	m.settings = &st
	return nil
}

func (m *memStore) ClearAll(context.Context) error {
	m.txns = nil
	m.settings = nil
	return nil
}

func validInput() NewTransactionInput {
	return NewTransactionInput{
		Type:     "expense",
		Amount:   "42.75",
		Category: "Food",
		Date:     "2025-06-10",
		Note:     "groceries",
	}
}

func TestAddTransaction(t *testing.T) {
	store := &memStore{}
	ledger := NewLedger(store)
	ctx := context.Background()

	txn, err := ledger.AddTransaction(ctx, validInput())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if txn.ID == "" {
		t.Fatal("transaction must get an id")
	}
	if float64(txn.Amount) != 42.75 || txn.Category != "Food" {
		t.Fatalf("unexpected transaction %+v", txn)
	}

	// Second add goes to the front: newest-first by insertion.
	second, err := ledger.AddTransaction(ctx, NewTransactionInput{
		Type: "income", Amount: "900", Category: "Salary", Date: "2025-06-01",
	})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if store.txns[0].ID != second.ID || store.txns[1].ID != txn.ID {
		t.Fatal("new transactions must be prepended")
	}
}

func TestAddTransactionRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*NewTransactionInput)
		wantErr error
	}{
		{"garbage amount", func(in *NewTransactionInput) { in.Amount = "12abc" }, core.ErrInvalidAmount},
		{"negative amount", func(in *NewTransactionInput) { in.Amount = "-4" }, core.ErrInvalidAmount},
		{"zero amount", func(in *NewTransactionInput) { in.Amount = "0" }, core.ErrInvalidAmount},
		{"bad date", func(in *NewTransactionInput) { in.Date = "10/06/2025" }, core.ErrInvalidDate},
		{"unknown category", func(in *NewTransactionInput) { in.Category = "Yachts" }, core.ErrUnknownCategory},
		{"bad type", func(in *NewTransactionInput) { in.Type = "transfer" }, core.ErrInvalidType},
	}
	for _, tc := range cases {
		store := &memStore{}
		in := validInput()
		tc.mutate(&in)
		_, err := NewLedger(store).AddTransaction(context.Background(), in)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
		if store.saves != 0 {
			t.Errorf("%s: invalid input must not write (saves=%d)", tc.name, store.saves)
		}
	}
}

func TestDeleteTransactionPreservesOrder(t *testing.T) {
	store := &memStore{txns: []core.Transaction{
		{ID: "c", Type: core.Expense, Amount: 3, Category: "Food", Date: core.NewDate(2025, 6, 3)},
		{ID: "b", Type: core.Expense, Amount: 2, Category: "Food", Date: core.NewDate(2025, 6, 2)},
		{ID: "a", Type: core.Expense, Amount: 1, Category: "Food", Date: core.NewDate(2025, 6, 1)},
	}}
	ledger := NewLedger(store)

	if err := ledger.DeleteTransaction(context.Background(), "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.txns) != 2 || store.txns[0].ID != "c" || store.txns[1].ID != "a" {
		t.Fatalf("unexpected remainder %+v", store.txns)
	}
}

func TestDeleteTransactionMissing(t *testing.T) {
	store := &memStore{}
	err := NewLedger(store).DeleteTransaction(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if store.saves != 0 {
		t.Fatal("missing id must not trigger a write")
	}
}

func TestUpdateBudget(t *testing.T) {
	store := &memStore{}
	ledger := NewLedger(store)
	st, err := ledger.UpdateBudget(context.Background(), 3000)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if st.Budget != 3000 || st.Theme != core.ThemeLight {
		t.Fatalf("unexpected settings %+v", st)
	}
	if _, err := ledger.UpdateBudget(context.Background(), -10); !errors.Is(err, core.ErrInvalidBudget) {
		t.Fatalf("negative budget must be rejected, got %v", err)
	}
	if store.settings.Budget != 3000 {
		t.Fatal("rejected budget must not overwrite the stored one")
	}
}

func TestToggleTheme(t *testing.T) {
	store := &memStore{}
	ledger := NewLedger(store)
	ctx := context.Background()
	st, err := ledger.ToggleTheme(ctx)
	if err != nil || st.Theme != core.ThemeDark {
		t.Fatalf("first toggle: %+v, %v", st, err)
	}
	st, err = ledger.ToggleTheme(ctx)
	if err != nil || st.Theme != core.ThemeLight {
		t.Fatalf("second toggle: %+v, %v", st, err)
	}
}

func TestBudgetStatus(t *testing.T) {
	now := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)
	store := &memStore{
		txns: []core.Transaction{
			{ID: "a", Type: core.Expense, Amount: 850, Category: "Housing", Date: core.NewDate(2025, 6, 5)},
			{ID: "b", Type: core.Expense, Amount: 500, Category: "Food", Date: core.NewDate(2025, 5, 5)},
		},
		settings: &core.Settings{Budget: 1000, Theme: core.ThemeLight},
	}
	st, err := NewLedger(store).BudgetStatus(context.Background(), now)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.RawPercent != 85 || st.Level != core.BudgetWarning {
		t.Fatalf("unexpected status %+v", st)
	}
}
