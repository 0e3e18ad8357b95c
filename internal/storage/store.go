// Package storage persists the ledger as two JSON documents in a sqlite
// key-value table. Each load/save is an independent read or write; callers
// own the read-modify-write cycle.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tally/internal/core"

	_ "modernc.org/sqlite"
)

const (
	keyTransactions = "transactions"
	keySettings     = "settings"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at dbPath and brings
// its schema up to date.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) getDocument(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read document %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *Store) setDocument(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("write document %q: %w", key, err)
	}
	return nil
}

// LoadTransactions returns the stored ledger, newest-first as written. An
// absent document means no data yet; a document that fails to parse is
// logged and treated the same way, so reads stay recoverable and the next
// save repairs the blob.
func (s *Store) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	raw, ok, err := s.getDocument(ctx, keyTransactions)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var txns []core.Transaction
	if err := json.Unmarshal(raw, &txns); err != nil {
		slog.ErrorContext(ctx, "Corrupt transactions document, falling back to empty ledger",
			"error", err, "bytes", len(raw))
		return nil, nil
	}
	return txns, nil
}

func (s *Store) SaveTransactions(ctx context.Context, txns []core.Transaction) error {
	if txns == nil {
		txns = []core.Transaction{}
	}
	raw, err := json.Marshal(txns)
	if err != nil {
		return fmt.Errorf("marshal transactions: %w", err)
	}
	return s.setDocument(ctx, keyTransactions, raw)
}

// LoadSettings returns the stored settings, or defaults when the document is
// absent or corrupt.
func (s *Store) LoadSettings(ctx context.Context) (core.Settings, error) {
	raw, ok, err := s.getDocument(ctx, keySettings)
	if err != nil {
		return core.Settings{}, err
	}
	if !ok {
		return core.DefaultSettings(), nil
	}
	var st core.Settings
	if err := json.Unmarshal(raw, &st); err != nil {
		slog.ErrorContext(ctx, "Corrupt settings document, falling back to defaults", "error", err)
		return core.DefaultSettings(), nil
	}
	if err := st.Validate(); err != nil {
		slog.ErrorContext(ctx, "Invalid stored settings, falling back to defaults", "error", err)
		return core.DefaultSettings(), nil
	}
	return st, nil
}

func (s *Store) SaveSettings(ctx context.Context, st core.Settings) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return s.setDocument(ctx, keySettings, raw)
}

// ClearAll removes both documents. Irreversible.
func (s *Store) ClearAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key IN (?, ?)`,
		keyTransactions, keySettings)
	if err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	slog.InfoContext(ctx, "All ledger data cleared")
	return nil
}
