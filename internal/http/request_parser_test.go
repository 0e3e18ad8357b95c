package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func formRequest(body url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseTransactionForm(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(url.Values)
		wantOK bool
	}{
		{"valid", func(url.Values) {}, true},
		{"missing type", func(f url.Values) { f.Del("type") }, false},
		{"bad type", func(f url.Values) { f.Set("type", "transfer") }, false},
		{"missing amount", func(f url.Values) { f.Del("amount") }, false},
		{"bad date format", func(f url.Values) { f.Set("date", "June 15") }, false},
		{"note too long", func(f url.Values) { f.Set("note", strings.Repeat("x", 201)) }, false},
		{"empty note ok", func(f url.Values) { f.Del("note") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(form)

			parsed, errResp := parseTransactionForm(formRequest(form))
			if tt.wantOK {
				if errResp != nil {
					t.Fatalf("unexpected rejection")
				}
				if parsed.Type != form.Get("type") || parsed.Amount != form.Get("amount") {
					t.Fatalf("parsed form mismatch: %+v", parsed)
				}
				return
			}
			if errResp == nil {
				t.Fatalf("expected rejection")
			}
		})
	}
}

func TestParseTransactionFormSanitizes(t *testing.T) {
	form := validForm()
	form.Set("note", "  lunch\x00 downtown  ")

	parsed, errResp := parseTransactionForm(formRequest(form))
	if errResp != nil {
		t.Fatalf("unexpected rejection")
	}
	if parsed.Note != "lunch downtown" {
		t.Fatalf("note not sanitized: %q", parsed.Note)
	}
}

func TestParseBudgetForm(t *testing.T) {
	if _, errResp := parseBudgetForm(formRequest(url.Values{"budget": {"1500"}})); errResp != nil {
		t.Fatalf("valid budget rejected")
	}
	if _, errResp := parseBudgetForm(formRequest(url.Values{})); errResp == nil {
		t.Fatalf("missing budget accepted")
	}
}

func TestParseReportFilterDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ui/reports", nil)
	filter, err := parseReportFilter(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter.Period != "all" || filter.Category != "all" {
		t.Fatalf("defaults not applied: %+v", filter)
	}

	req = httptest.NewRequest(http.MethodGet, "/ui/reports?period=last-week", nil)
	if _, err := parseReportFilter(req); err == nil {
		t.Fatalf("unknown period accepted")
	}
}
