package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"tally/internal/core"
)

// ErrNoData is returned instead of producing a header-only CSV for an empty
// ledger.
var ErrNoData = errors.New("no transactions to export")

var csvHeader = []string{"Date", "Type", "Category", "Amount", "Note"}

// ExportCSV renders the ledger in its stored order, one row per transaction.
// Fields containing separators or quotes are quoted per RFC 4180 by the csv
// writer.
func ExportCSV(txns []core.Transaction) ([]byte, error) {
	if len(txns) == 0 {
		return nil, ErrNoData
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txns {
		row := []string{
			t.Date.String(),
			string(t.Type),
			t.Category,
			strconv.FormatFloat(float64(t.Amount), 'f', 2, 64),
			t.Note,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
