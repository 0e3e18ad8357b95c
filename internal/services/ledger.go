// Package services orchestrates ledger operations between the HTTP boundary
// and the document store. Every operation is a synchronous
// read-modify-write; there is no cross-call atomicity and no background
// work.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
)

// Store is the persistence surface the ledger needs: two JSON documents
// behind key-value load/save plus a destructive clear.
type Store interface {
	LoadTransactions(ctx context.Context) ([]core.Transaction, error)
	SaveTransactions(ctx context.Context, txns []core.Transaction) error
	LoadSettings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, st core.Settings) error
	ClearAll(ctx context.Context) error
}

var ErrNotFound = errors.New("transaction not found")

type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// NewTransactionInput carries raw form fields. Parsing and validation happen
// here, before anything is written.
type NewTransactionInput struct {
	Type     string
	Amount   string
	Category string
	Date     string
	Note     string
}

// AddTransaction validates the input, assigns an opaque id and prepends the
// record so the stored order stays newest-first by insertion. Invalid input
// leaves the store untouched.
func (l *Ledger) AddTransaction(ctx context.Context, in NewTransactionInput) (core.Transaction, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(in.Amount), 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, in.Amount)
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	txn := core.Transaction{
		ID:       uuid.NewString(),
		Type:     core.TransactionType(strings.TrimSpace(in.Type)),
		Amount:   core.Amount(amount),
		Category: strings.TrimSpace(in.Category),
		Date:     date,
		Note:     strings.TrimSpace(in.Note),
	}
	if err := txn.Validate(); err != nil {
		return core.Transaction{}, err
	}

	txns, err := l.store.LoadTransactions(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transactions: %w", err)
	}
	txns = append([]core.Transaction{txn}, txns...)
	if err := l.store.SaveTransactions(ctx, txns); err != nil {
		return core.Transaction{}, fmt.Errorf("save transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", txn.ID,
		"type", string(txn.Type),
		"category", txn.Category,
		"amount", float64(txn.Amount),
		"date", txn.Date.String())
	return txn, nil
}

// DeleteTransaction removes exactly the record with the given id, leaving
// the relative order of all others unchanged.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	txns, err := l.store.LoadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	kept := make([]core.Transaction, 0, len(txns))
	found := false
	for _, t := range txns {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := l.store.SaveTransactions(ctx, kept); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "remaining", len(kept))
	return nil
}

// Transactions returns the stored ledger, newest-first.
func (l *Ledger) Transactions(ctx context.Context) ([]core.Transaction, error) {
	txns, err := l.store.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txns, nil
}

func (l *Ledger) Settings(ctx context.Context) (core.Settings, error) {
	st, err := l.store.LoadSettings(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return st, nil
}

// UpdateBudget replaces the budget ceiling, keeping the current theme.
func (l *Ledger) UpdateBudget(ctx context.Context, budget float64) (core.Settings, error) {
	st, err := l.store.LoadSettings(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	st.Budget = budget
	if err := st.Validate(); err != nil {
		return core.Settings{}, err
	}
	if err := l.store.SaveSettings(ctx, st); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	slog.InfoContext(ctx, "Budget updated", "budget", budget)
	return st, nil
}

// ToggleTheme flips light/dark and persists the result.
func (l *Ledger) ToggleTheme(ctx context.Context) (core.Settings, error) {
	st, err := l.store.LoadSettings(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	st.Theme = st.Theme.Toggle()
	if err := l.store.SaveSettings(ctx, st); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	slog.InfoContext(ctx, "Theme toggled", "theme", string(st.Theme))
	return st, nil
}

// ClearAll wipes every stored document. Irreversible; callers must have
// confirmed with the user first.
func (l *Ledger) ClearAll(ctx context.Context) error {
	if err := l.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear all data: %w", err)
	}
	return nil
}

// BudgetStatus evaluates this month's expenses against the configured
// budget.
func (l *Ledger) BudgetStatus(ctx context.Context, now time.Time) (core.BudgetStatus, error) {
	txns, err := l.store.LoadTransactions(ctx)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("load transactions: %w", err)
	}
	st, err := l.store.LoadSettings(ctx)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("load settings: %w", err)
	}
	return core.EvaluateBudget(core.MonthExpenseTotal(txns, now), st.Budget), nil
}
