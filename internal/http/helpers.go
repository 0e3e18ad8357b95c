package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tally/internal/core"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// parseReportFilter extracts the period and category filter from query
// parameters. An absent period means "all"; an unknown one is an error so
// the caller can answer 400 instead of silently widening the report.
func parseReportFilter(r *http.Request) (core.ReportFilter, error) {
	period, err := core.ParsePeriod(strings.TrimSpace(r.URL.Query().Get("period")))
	if err != nil {
		return core.ReportFilter{}, fmt.Errorf("parse report filter: %w", err)
	}

	category := sanitizeInput(r.URL.Query().Get("category"))
	if category == "" {
		category = core.CategoryAll
	}

	return core.ReportFilter{Period: period, Category: category}, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
