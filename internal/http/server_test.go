package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/services"
)

// fakeLedger keeps everything in memory and mirrors the service layer's
// validation behavior closely enough for handler tests.
type fakeLedger struct {
	txns     []core.Transaction
	settings core.Settings
	fail     bool
	nextID   int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{settings: core.DefaultSettings()}
}

func (f *fakeLedger) AddTransaction(ctx context.Context, in services.NewTransactionInput) (core.Transaction, error) {
	txn, err := buildTransaction(in, "txn-"+strconv.Itoa(f.nextID))
	if err != nil {
		return core.Transaction{}, err
	}
	f.nextID++
	f.txns = append([]core.Transaction{txn}, f.txns...)
	return txn, nil
}

func (f *fakeLedger) DeleteTransaction(ctx context.Context, id string) error {
	for i, t := range f.txns {
		if t.ID == id {
			f.txns = append(f.txns[:i], f.txns[i+1:]...)
			return nil
		}
	}
	return services.ErrNotFound
}

func (f *fakeLedger) Transactions(ctx context.Context) ([]core.Transaction, error) {
	if f.fail {
		return nil, context.DeadlineExceeded
	}
	return f.txns, nil
}

func (f *fakeLedger) Settings(ctx context.Context) (core.Settings, error) {
	if f.fail {
		return core.Settings{}, context.DeadlineExceeded
	}
	return f.settings, nil
}

func (f *fakeLedger) UpdateBudget(ctx context.Context, budget float64) (core.Settings, error) {
	f.settings.Budget = budget
	if err := f.settings.Validate(); err != nil {
		return core.Settings{}, err
	}
	return f.settings, nil
}

func (f *fakeLedger) ToggleTheme(ctx context.Context) (core.Settings, error) {
	f.settings.Theme = f.settings.Theme.Toggle()
	return f.settings, nil
}

func (f *fakeLedger) ClearAll(ctx context.Context) error {
	f.txns = nil
	f.settings = core.DefaultSettings()
	return nil
}

func (f *fakeLedger) BudgetStatus(ctx context.Context, now time.Time) (core.BudgetStatus, error) {
	if f.fail {
		return core.BudgetStatus{}, context.DeadlineExceeded
	}
	return core.EvaluateBudget(core.MonthExpenseTotal(f.txns, now), f.settings.Budget), nil
}

func buildTransaction(in services.NewTransactionInput, id string) (core.Transaction, error) {
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, core.ErrInvalidDate
	}
	amount, err := strconv.ParseFloat(in.Amount, 64)
	if err != nil {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	txn := core.Transaction{
		ID:       id,
		Type:     core.TransactionType(in.Type),
		Amount:   core.Amount(amount),
		Category: in.Category,
		Date:     date,
		Note:     in.Note,
	}
	if err := txn.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return txn, nil
}

func newTestServer(t *testing.T, ledger Ledger) *Server {
	t.Helper()
	srv := NewServer(":0", ledger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func postForm(srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func validForm() url.Values {
	return url.Values{
		"type":     {"expense"},
		"amount":   {"12.50"},
		"category": {"Food"},
		"date":     {"2025-06-15"},
		"note":     {"lunch"},
	}
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t, newFakeLedger())

	rr := get(srv, "/")
	if rr.Code != 200 {
		t.Fatalf("index status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Tally") {
		t.Fatalf("index body missing app heading")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(srv, path); rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestIndexExportControlUsesScript(t *testing.T) {
	srv := newTestServer(t, newFakeLedger())

	body := get(srv, "/").Body.String()
	// A plain link would navigate straight into the 409 error body on an
	// empty ledger; the control must go through the fetch helper instead.
	if !strings.Contains(body, `id="export-csv"`) {
		t.Fatalf("export button missing")
	}
	if strings.Contains(body, `href="/export.csv"`) {
		t.Fatalf("export rendered as a plain link")
	}
}

func TestReadyzFailsWhenStoreDown(t *testing.T) {
	ledger := newFakeLedger()
	ledger.fail = true
	srv := newTestServer(t, ledger)

	if rr := get(srv, "/readyz"); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d, want 503", rr.Code)
	}
}

func TestCreateTransactionValidationAndSuccess(t *testing.T) {
	srv := newTestServer(t, newFakeLedger())

	// Wrong method
	if rr := get(srv, "/transactions"); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	// Missing required field
	form := validForm()
	form.Del("amount")
	if rr := postForm(srv, "/transactions", form); rr.Code != 422 {
		t.Fatalf("missing amount: expected 422, got %d", rr.Code)
	}

	// Structurally broken date never reaches the ledger
	form = validForm()
	form.Set("date", "15/06/2025")
	if rr := postForm(srv, "/transactions", form); rr.Code != 422 {
		t.Fatalf("bad date: expected 422, got %d", rr.Code)
	}

	// Category belongs to the other type
	form = validForm()
	form.Set("category", "Salary")
	if rr := postForm(srv, "/transactions", form); rr.Code != 422 {
		t.Fatalf("wrong category: expected 422, got %d", rr.Code)
	}

	// Valid submission
	rr := postForm(srv, "/transactions", validForm())
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "ledger:changed") || !strings.Contains(trigger, "show-notification") {
		t.Fatalf("missing triggers: %q", trigger)
	}
}

func TestDeleteTransaction(t *testing.T) {
	ledger := newFakeLedger()
	srv := newTestServer(t, ledger)

	if rr := postForm(srv, "/transactions/nope/delete", url.Values{}); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown id: expected 404, got %d", rr.Code)
	}

	postForm(srv, "/transactions", validForm())
	if len(ledger.txns) != 1 {
		t.Fatalf("setup: expected 1 transaction, got %d", len(ledger.txns))
	}

	rr := postForm(srv, "/transactions/"+ledger.txns[0].ID+"/delete", url.Values{})
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(ledger.txns) != 0 {
		t.Fatalf("transaction not removed")
	}
}

func TestTransactionListFilter(t *testing.T) {
	srv := newTestServer(t, newFakeLedger())

	postForm(srv, "/transactions", validForm())

	rr := get(srv, "/ui/transactions?period=all&category=all")
	if rr.Code != 200 {
		t.Fatalf("list status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Food") {
		t.Fatalf("list body missing row")
	}

	if rr := get(srv, "/ui/transactions?period=bogus"); rr.Code != http.StatusBadRequest {
		t.Fatalf("bogus period: expected 400, got %d", rr.Code)
	}

	// A category with no matches renders the empty state.
	rr = get(srv, "/ui/transactions?period=all&category=Housing")
	if rr.Code != 200 || strings.Contains(rr.Body.String(), "Food") {
		t.Fatalf("category filter leaked rows")
	}
}

func TestTransactionNoteEscapedOnce(t *testing.T) {
	srv := newTestServer(t, newFakeLedger())

	form := validForm()
	form.Set("note", "Tom & Jerry <lunch>")
	if rr := postForm(srv, "/transactions", form); rr.Code != 200 {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr := get(srv, "/ui/transactions")
	body := rr.Body.String()
	if !strings.Contains(body, "Tom &amp; Jerry &lt;lunch&gt;") {
		t.Fatalf("note not escaped exactly once: %q", body)
	}
	if strings.Contains(body, "&amp;amp;") || strings.Contains(body, "&amp;lt;") {
		t.Fatalf("note double-escaped: %q", body)
	}
}

func TestSummaryAndBudgetPartials(t *testing.T) {
	srv := newTestServer(t, newFakeLedger())
	postForm(srv, "/transactions", validForm())

	rr := get(srv, "/ui/summary")
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), "$12.50") {
		t.Fatalf("summary: status=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = get(srv, "/ui/budget")
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), "$2,000.00") {
		t.Fatalf("budget: status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestBudgetPercentLabelMatchesLevel(t *testing.T) {
	ledger := newFakeLedger()
	ledger.settings.Budget = 1000
	now := time.Now()
	ledger.txns = []core.Transaction{{
		ID:       "near-limit",
		Type:     core.Expense,
		Amount:   996,
		Category: "Food",
		Date:     core.NewDate(now.Year(), int(now.Month()), 1),
	}}
	srv := newTestServer(t, ledger)

	rr := get(srv, "/ui/budget")
	if rr.Code != 200 {
		t.Fatalf("budget status=%d", rr.Code)
	}
	body := rr.Body.String()
	// 99.6% stays warning, so the label must not round up to 100%.
	if !strings.Contains(body, "99%") {
		t.Fatalf("label not truncated: %q", body)
	}
	if !strings.Contains(body, "budget-warning") {
		t.Fatalf("level not warning: %q", body)
	}
}

func TestReportsPartial(t *testing.T) {
	srv := newTestServer(t, newFakeLedger())
	postForm(srv, "/transactions", validForm())

	rr := get(srv, "/ui/reports?period=all&category=all")
	if rr.Code != 200 {
		t.Fatalf("reports status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "charts/pie.png") || !strings.Contains(body, "charts/bar.png") {
		t.Fatalf("reports body missing chart images")
	}
	if !strings.Contains(body, "#a29bfe") {
		t.Fatalf("reports body missing legend color")
	}
}

func TestCharts(t *testing.T) {
	srv := newTestServer(t, newFakeLedger())
	postForm(srv, "/transactions", validForm())

	rr := get(srv, "/charts/pie.png?period=all&category=all")
	if rr.Code != 200 {
		t.Fatalf("pie status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("pie content type %q", ct)
	}

	rr = get(srv, "/charts/bar.png?period=all")
	if rr.Code != 200 || rr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("bar status=%d content type %q", rr.Code, rr.Header().Get("Content-Type"))
	}

	if rr := get(srv, "/charts/pie.png?period=nope"); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad period: expected 400, got %d", rr.Code)
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t, newFakeLedger())

	// Empty ledger never yields a file.
	rr := get(srv, "/export.csv")
	if rr.Code != http.StatusConflict {
		t.Fatalf("empty export: expected 409, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "show-notification") {
		t.Fatalf("empty export missing error toast")
	}

	postForm(srv, "/transactions", validForm())
	rr = get(srv, "/export.csv")
	if rr.Code != 200 {
		t.Fatalf("export status=%d", rr.Code)
	}
	if !strings.HasPrefix(rr.Body.String(), "Date,Type,Category,Amount,Note") {
		t.Fatalf("export missing header: %q", rr.Body.String())
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("export content disposition %q", cd)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	ledger := newFakeLedger()
	srv := newTestServer(t, ledger)

	rr := postForm(srv, "/settings/budget", url.Values{"budget": {"2500"}})
	if rr.Code != 200 {
		t.Fatalf("budget update status=%d", rr.Code)
	}
	if ledger.settings.Budget != 2500 {
		t.Fatalf("budget not applied: %v", ledger.settings.Budget)
	}

	if rr := postForm(srv, "/settings/budget", url.Values{"budget": {"abc"}}); rr.Code != 422 {
		t.Fatalf("non-numeric budget: expected 422, got %d", rr.Code)
	}

	rr = postForm(srv, "/settings/theme", url.Values{})
	if rr.Code != 200 {
		t.Fatalf("theme toggle status=%d", rr.Code)
	}
	if ledger.settings.Theme != core.ThemeDark {
		t.Fatalf("theme not toggled: %v", ledger.settings.Theme)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "theme:changed") {
		t.Fatalf("missing theme trigger")
	}
}

func TestClearData(t *testing.T) {
	ledger := newFakeLedger()
	srv := newTestServer(t, ledger)
	postForm(srv, "/transactions", validForm())
	postForm(srv, "/settings/budget", url.Values{"budget": {"9999"}})

	rr := postForm(srv, "/data/clear", url.Values{})
	if rr.Code != 200 {
		t.Fatalf("clear status=%d", rr.Code)
	}
	if len(ledger.txns) != 0 || ledger.settings.Budget != core.DefaultSettings().Budget {
		t.Fatalf("clear did not reset state")
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, newFakeLedger())

	rr := get(srv, "/")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing frame options header")
	}
}
