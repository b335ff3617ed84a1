package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintracker/internal/analytics"
	"fintracker/internal/core"
	"fintracker/internal/ledger"
)

type createTransactionRequest struct {
	Amount         json.Number `json:"amount"`
	Category       string      `json:"category"`
	CustomCategory string      `json:"custom_category"`
	Date           string      `json:"date"`
	Type           string      `json:"type"`
}

type transactionJSON struct {
	ID       int64   `json:"id"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Type     string  `json:"type"`
}

type totalsJSON struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

type shareJSON struct {
	Category string  `json:"category"`
	Percent  float64 `json:"percent"`
}

type listResponse struct {
	Transactions []transactionJSON `json:"transactions"`
	Totals       totalsJSON        `json:"totals"`
}

type summaryResponse struct {
	Totals            totalsJSON  `json:"totals"`
	Balance           float64     `json:"balance"`
	IncomeByCategory  []shareJSON `json:"income_by_category"`
	ExpenseByCategory []shareJSON `json:"expense_by_category"`
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:       tx.ID,
		Amount:   tx.Amount.Float(),
		Category: tx.Category,
		Date:     tx.Date.Display(),
		Type:     string(tx.Type),
	}
}

func toTotalsJSON(t core.Totals) totalsJSON {
	return totalsJSON{
		Income:  t.Income.Float(),
		Expense: t.Expense.Float(),
		Net:     float64(t.Net()) / 100,
	}
}

func toShareJSON(shares []core.CategoryShare) []shareJSON {
	out := make([]shareJSON, 0, len(shares))
	for _, s := range shares {
		out = append(out, shareJSON{Category: s.Category, Percent: s.Percent})
	}
	return out
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == core.CategoryOther {
		category = strings.TrimSpace(req.CustomCategory)
	}
	if category == "" {
		writeError(w, http.StatusUnprocessableEntity, "category is required")
		return
	}
	if category == core.CategoryOther {
		writeError(w, http.StatusUnprocessableEntity, "category name 'Other' is reserved")
		return
	}

	date, err := core.ParseDisplayDate(strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected MM/DD/YYYY")
		return
	}

	txType, err := core.ParseTxType(strings.TrimSpace(req.Type))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid type, expected Income or Expense")
		return
	}

	tx := core.Transaction{
		Amount:   core.Money{Cents: cents},
		Category: category,
		Date:     date,
		Type:     txType,
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.service.Add(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed adding transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record transaction")
		return
	}
	tx.ID = id

	s.invalidateCaches()
	writeJSON(w, http.StatusCreated, toTransactionJSON(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed deleting transaction", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.invalidateCaches()
	w.WriteHeader(http.StatusNoContent)
}

// periodDays maps shortcut period filters to a trailing day count.
var periodDays = map[string]int{
	"week":  7,
	"month": 30,
	"year":  365,
}

// parseQuery builds an analytics query from URL parameters. Dates use the
// same MM/DD/YYYY format the rest of the API speaks. An explicit start
// overrides the period shortcut.
func parseQuery(r *http.Request) (analytics.Query, error) {
	q := analytics.Query{
		Category: analytics.FilterAll,
		Type:     analytics.FilterAll,
	}

	if v := strings.TrimSpace(r.URL.Query().Get("category")); v != "" {
		q.Category = v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		if v != analytics.FilterAll {
			if _, err := core.ParseTxType(v); err != nil {
				return q, errors.New("invalid type filter")
			}
		}
		q.Type = v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("period")); v != "" {
		days, ok := periodDays[v]
		if !ok {
			return q, errors.New("invalid period, expected week, month or year")
		}
		d := core.Date{Time: time.Now().AddDate(0, 0, -days)}
		q.Start = &d
	}
	if v := strings.TrimSpace(r.URL.Query().Get("start")); v != "" {
		d, err := core.ParseDisplayDate(v)
		if err != nil {
			return q, errors.New("invalid start date, expected MM/DD/YYYY")
		}
		q.Start = &d
	}
	if v := strings.TrimSpace(r.URL.Query().Get("end")); v != "" {
		d, err := core.ParseDisplayDate(v)
		if err != nil {
			return q, errors.New("invalid end date, expected MM/DD/YYYY")
		}
		q.End = &d
	}

	return q, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := r.URL.RawQuery
	if cached, ok := s.listCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	ts, err := s.service.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed listing transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	filtered := analytics.Filter(ts, q)
	resp := listResponse{
		Transactions: make([]transactionJSON, 0, len(filtered)),
		Totals:       toTotalsJSON(analytics.Totals(filtered)),
	}
	for _, tx := range filtered {
		resp.Transactions = append(resp.Transactions, toTransactionJSON(tx))
	}

	s.listCache.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := r.URL.RawQuery
	if cached, ok := s.summaryCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	ts, err := s.service.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed listing transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	filtered := analytics.Filter(ts, q)
	income, expense := analytics.Breakdown(filtered)
	resp := summaryResponse{
		Totals:            toTotalsJSON(analytics.Totals(filtered)),
		Balance:           analytics.Balance(filtered).Float(),
		IncomeByCategory:  toShareJSON(income),
		ExpenseByCategory: toShareJSON(expense),
	}

	s.summaryCache.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.service.Balance(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed computing balance", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute balance")
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance.Float()})
}
