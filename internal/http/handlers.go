package http

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tally/internal/core"
	"tally/internal/render"
	"tally/internal/services"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	settings, err := s.ledger.Settings(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings load error", "error", err)
		settings = core.DefaultSettings()
	}

	data := struct {
		Theme             string
		Budget            string
		Today             string
		IncomeCategories  []string
		ExpenseCategories []string
	}{
		Theme:             string(settings.Theme),
		Budget:            strconv.FormatFloat(settings.Budget, 'f', 2, 64),
		Today:             time.Now().Format(core.DateLayout),
		IncomeCategories:  core.Categories(core.Income),
		ExpenseCategories: core.Categories(core.Expense),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	txns, err := s.ledger.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary load error", "error", err)
		_, _ = w.Write([]byte(`<section id="summary" class="summary"><div class="placeholder">Error loading summary</div></section>`))
		return
	}

	totals := core.CalculateTotals(txns)
	data := struct {
		Income          string
		Expense         string
		Balance         string
		BalanceNegative bool
	}{
		Income:          core.FormatCurrency(totals.Income),
		Expense:         core.FormatCurrency(totals.Expense),
		Balance:         core.FormatCurrency(totals.Balance),
		BalanceNegative: totals.Balance < 0,
	}

	if err := s.templates.ExecuteTemplate(w, "summary.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Summary template execution failed", "error", err)
		_, _ = w.Write([]byte(`<section id="summary" class="summary"><div class="placeholder">Error rendering summary</div></section>`))
	}
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	status, err := s.ledger.BudgetStatus(r.Context(), time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget status error", "error", err)
		_, _ = w.Write([]byte(`<section id="budget" class="budget"><div class="placeholder">Error loading budget</div></section>`))
		return
	}

	// Truncate rather than round so the label never crosses a
	// classification threshold the level itself has not crossed.
	percentLabel := "over budget"
	if !math.IsInf(status.RawPercent, 1) {
		percentLabel = strconv.FormatFloat(math.Floor(status.RawPercent), 'f', 0, 64) + "%"
	}

	data := struct {
		Spent        string
		Budget       string
		Percent      int
		PercentLabel string
		Level        string
	}{
		Spent:        core.FormatCurrency(status.Spent),
		Budget:       core.FormatCurrency(status.Budget),
		Percent:      int(status.DisplayPercent),
		PercentLabel: percentLabel,
		Level:        string(status.Level),
	}

	if err := s.templates.ExecuteTemplate(w, "budget.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Budget template execution failed", "error", err)
		_, _ = w.Write([]byte(`<section id="budget" class="budget"><div class="placeholder">Error rendering budget</div></section>`))
	}
}

type transactionRow struct {
	ID       string
	Date     string
	Type     string
	Category string
	Amount   string
	Note     string
	Expense  bool
}

func transactionRows(txns []core.Transaction) []transactionRow {
	rows := make([]transactionRow, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, transactionRow{
			ID:       t.ID,
			Date:     core.FormatDate(t.Date),
			Type:     string(t.Type),
			Category: t.Category,
			Amount:   core.FormatCurrency(float64(t.Amount)),
			Note:     t.Note,
			Expense:  t.Type == core.Expense,
		})
	}
	return rows
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	filter, err := parseReportFilter(r)
	if err != nil {
		BadRequestError("Unknown period").Write(w)
		return
	}

	txns, err := s.ledger.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list error", "error", err)
		_, _ = w.Write([]byte(`<section id="transactions" class="transactions"><div class="placeholder">Error loading transactions</div></section>`))
		return
	}

	filtered := core.FilterTransactions(txns, filter, time.Now())
	data := struct {
		Rows  []transactionRow
		Empty bool
	}{
		Rows:  transactionRows(filtered),
		Empty: len(filtered) == 0,
	}

	if err := s.templates.ExecuteTemplate(w, "transactions.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Transactions template execution failed", "error", err)
		_, _ = w.Write([]byte(`<section id="transactions" class="transactions"><div class="placeholder">Error rendering transactions</div></section>`))
	}
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	filter, err := parseReportFilter(r)
	if err != nil {
		BadRequestError("Unknown period").Write(w)
		return
	}

	txns, err := s.ledger.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Reports load error", "error", err)
		_, _ = w.Write([]byte(`<section id="reports" class="reports"><div class="placeholder">Error loading reports</div></section>`))
		return
	}

	filtered := core.FilterTransactions(txns, filter, time.Now())
	totals := core.CalculateTotals(filtered)
	byCategory := core.CategoryTotals(filtered, core.Expense)

	type legendRow struct {
		Color    string
		Category string
		Amount   string
		Percent  int
	}
	var legend []legendRow
	for i, ca := range byCategory {
		percent := 0
		if totals.Expense > 0 {
			percent = int(ca.Amount/totals.Expense*100 + 0.5)
		}
		legend = append(legend, legendRow{
			Color:    render.SliceColorHex(i),
			Category: ca.Category,
			Amount:   core.FormatCurrency(ca.Amount),
			Percent:  percent,
		})
	}

	query := url.Values{}
	query.Set("period", string(filter.Period))
	query.Set("category", filter.Category)

	data := struct {
		Period     string
		Category   string
		Income     string
		Expense    string
		Legend     []legendRow
		ChartQuery string
		// Cache buster so HTMX swaps always refetch the images.
		Stamp int64
	}{
		Period:     string(filter.Period),
		Category:   filter.Category,
		Income:     core.FormatCurrency(totals.Income),
		Expense:    core.FormatCurrency(totals.Expense),
		Legend:     legend,
		ChartQuery: query.Encode(),
		Stamp:      time.Now().UnixNano(),
	}

	if err := s.templates.ExecuteTemplate(w, "reports.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Reports template execution failed", "error", err)
		_, _ = w.Write([]byte(`<section id="reports" class="reports"><div class="placeholder">Error rendering reports</div></section>`))
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	form, errResp := parseTransactionForm(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	txn, err := s.ledger.AddTransaction(r.Context(), services.NewTransactionInput{
		Type:     form.Type,
		Amount:   form.Amount,
		Category: form.Category,
		Date:     form.Date,
		Note:     form.Note,
	})
	if err != nil {
		if msg, ok := rejectionMessage(err); ok {
			UnprocessableEntityError(msg).Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save transaction",
			"error", err,
			"transaction_type", form.Type,
			"category", form.Category,
			"component", "transaction_handler",
			"operation", "create")
		InternalServerError("Error saving transaction").Write(w)
		return
	}

	s.invalidateCharts()

	slog.InfoContext(r.Context(), "Transaction created",
		"transaction_id", txn.ID,
		"transaction_type", txn.Type,
		"category", txn.Category,
		"component", "transaction_handler",
		"operation", "create")

	successMsg := fmt.Sprintf("Added %s: %s (%s)",
		txn.Type, core.FormatCurrency(float64(txn.Amount)), txn.Category)

	NewHTMXResponse().
		TriggerLedgerChanged().
		TriggerFormReset().
		TriggerSuccessNotification(template.HTMLEscapeString(successMsg)).
		Write(w)
}

// rejectionMessage maps domain validation failures to user-facing text.
// Unknown errors fall through to a 500.
func rejectionMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a positive number", true
	case errors.Is(err, core.ErrUnknownCategory):
		return "Unknown category for this transaction type", true
	case errors.Is(err, core.ErrInvalidDate):
		return "Date must be in YYYY-MM-DD format", true
	case errors.Is(err, core.ErrNoteTooLong):
		return "Note is too long", true
	case errors.Is(err, core.ErrInvalidType):
		return "Type must be income or expense", true
	default:
		return "", false
	}
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		BadRequestError("Missing transaction id").Write(w)
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFoundError("Transaction not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction",
			"error", err,
			"transaction_id", id,
			"component", "transaction_handler",
			"operation", "delete")
		InternalServerError("Error deleting transaction").Write(w)
		return
	}

	s.invalidateCharts()

	slog.InfoContext(r.Context(), "Transaction deleted",
		"transaction_id", id,
		"component", "transaction_handler",
		"operation", "delete")

	NewHTMXResponse().
		TriggerLedgerChanged().
		TriggerSuccessNotification("Transaction deleted").
		Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	form, errResp := parseBudgetForm(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	budget, err := strconv.ParseFloat(form.Budget, 64)
	if err != nil || math.IsNaN(budget) || math.IsInf(budget, 0) {
		UnprocessableEntityError("Budget must be a number").Write(w)
		return
	}

	settings, err := s.ledger.UpdateBudget(r.Context(), budget)
	if err != nil {
		if errors.Is(err, core.ErrInvalidBudget) {
			UnprocessableEntityError("Budget must be zero or more").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update budget", "error", err, "budget", budget)
		InternalServerError("Error saving budget").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Budget updated",
		"budget", settings.Budget,
		"component", "settings_handler",
		"operation", "update_budget")

	NewHTMXResponse().
		TriggerSettingsUpdated().
		TriggerSuccessNotification("Monthly budget set to " + core.FormatCurrency(settings.Budget)).
		Write(w)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	settings, err := s.ledger.ToggleTheme(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to toggle theme", "error", err)
		InternalServerError("Error saving theme").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerSettingsUpdated().
		TriggerThemeChanged(string(settings.Theme)).
		Write(w)
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	if err := s.ledger.ClearAll(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to clear data", "error", err)
		InternalServerError("Error clearing data").Write(w)
		return
	}

	s.invalidateCharts()

	slog.InfoContext(r.Context(), "All data cleared",
		"component", "settings_handler",
		"operation", "clear_data")

	NewHTMXResponse().
		TriggerLedgerChanged().
		TriggerSettingsUpdated().
		TriggerSuccessNotification("All data cleared").
		Write(w)
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	filter, err := parseReportFilter(r)
	if err != nil {
		http.Error(w, "unknown period", http.StatusBadRequest)
		return
	}

	key := "pie|" + string(filter.Period) + "|" + filter.Category
	png, ok := s.chartCache.Get(key)
	if !ok {
		txns, err := s.ledger.Transactions(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Pie chart load error", "error", err)
			http.Error(w, "error loading data", http.StatusInternalServerError)
			return
		}

		filtered := core.FilterTransactions(txns, filter, time.Now())
		img := render.PieChart(core.CategoryTotals(filtered, core.Expense))
		png, err = render.EncodePNG(img)
		if err != nil {
			slog.ErrorContext(r.Context(), "Pie chart encode error", "error", err)
			http.Error(w, "error rendering chart", http.StatusInternalServerError)
			return
		}
		s.chartCache.Set(key, png)
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	period, err := core.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		http.Error(w, "unknown period", http.StatusBadRequest)
		return
	}
	filter := core.ReportFilter{Period: period, Category: core.CategoryAll}

	key := "bar|" + string(period)
	png, ok := s.chartCache.Get(key)
	if !ok {
		txns, err := s.ledger.Transactions(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Bar chart load error", "error", err)
			http.Error(w, "error loading data", http.StatusInternalServerError)
			return
		}

		totals := core.CalculateTotals(core.FilterTransactions(txns, filter, time.Now()))
		img := render.BarChart(totals.Income, totals.Expense)
		png, err = render.EncodePNG(img)
		if err != nil {
			slog.ErrorContext(r.Context(), "Bar chart encode error", "error", err)
			http.Error(w, "error rendering chart", http.StatusInternalServerError)
			return
		}
		s.chartCache.Set(key, png)
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	txns, err := s.ledger.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export load error", "error", err)
		InternalServerError("Error loading transactions").Write(w)
		return
	}

	out, err := services.ExportCSV(txns)
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			ConflictError("No transactions to export").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Export error", "error", err)
		InternalServerError("Error exporting transactions").Write(w)
		return
	}

	filename := "tally-export-" + time.Now().Format(core.DateLayout) + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
