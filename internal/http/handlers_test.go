package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintracker/internal/ledger/memory"
	"fintracker/internal/services"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	service := services.NewLedgerService(memory.New(), nil)
	srv := NewServer(":0", service)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { _ = service.Close() })
	return srv, ts
}

func postTransaction(t *testing.T, baseURL, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(baseURL+"/transactions", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /transactions: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestCreateTransaction(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postTransaction(t, ts.URL, `{"amount": 100.50, "category": "Salary", "date": "01/15/2024", "type": "Income"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	got := decodeBody[transactionJSON](t, resp)
	if got.ID != 1 {
		t.Fatalf("ID = %d, want 1", got.ID)
	}
	if got.Amount != 100.50 {
		t.Fatalf("Amount = %v, want 100.50", got.Amount)
	}
	if got.Category != "Salary" {
		t.Fatalf("Category = %q, want Salary", got.Category)
	}
	if got.Date != "01/15/2024" {
		t.Fatalf("Date = %q, want 01/15/2024", got.Date)
	}
	if got.Type != "Income" {
		t.Fatalf("Type = %q, want Income", got.Type)
	}
}

func TestCreateTransactionCustomCategory(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postTransaction(t, ts.URL, `{"amount": "12.34", "category": "Other", "custom_category": "Books", "date": "02/01/2024", "type": "Expense"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	got := decodeBody[transactionJSON](t, resp)
	if got.Category != "Books" {
		t.Fatalf("Category = %q, want Books", got.Category)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed json", `{not json`, http.StatusBadRequest},
		{"non-numeric amount", `{"amount": "abc", "category": "Rent", "date": "01/15/2024", "type": "Expense"}`, http.StatusBadRequest},
		{"missing amount", `{"category": "Rent", "date": "01/15/2024", "type": "Expense"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"amount": "-5", "category": "Rent", "date": "01/15/2024", "type": "Expense"}`, http.StatusUnprocessableEntity},
		{"missing category", `{"amount": "5", "category": "", "date": "01/15/2024", "type": "Expense"}`, http.StatusUnprocessableEntity},
		{"reserved custom category", `{"amount": "5", "category": "Other", "custom_category": "Other", "date": "01/15/2024", "type": "Expense"}`, http.StatusUnprocessableEntity},
		{"other without custom", `{"amount": "5", "category": "Other", "date": "01/15/2024", "type": "Expense"}`, http.StatusUnprocessableEntity},
		{"bad date format", `{"amount": "5", "category": "Rent", "date": "2024-01-15", "type": "Expense"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"amount": "5", "category": "Rent", "date": "01/15/2024", "type": "Transfer"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postTransaction(t, ts.URL, tt.body)
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func deleteTransaction(t *testing.T, baseURL string, id string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, baseURL+"/transactions/"+id, nil)
	if err != nil {
		t.Fatalf("build DELETE request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /transactions/%s: %v", id, err)
	}
	return resp
}

func TestDeleteTransaction(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postTransaction(t, ts.URL, `{"amount": "10", "category": "Rent", "date": "01/15/2024", "type": "Expense"}`)
	created := decodeBody[transactionJSON](t, resp)

	del := deleteTransaction(t, ts.URL, fmt.Sprintf("%d", created.ID))
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", del.StatusCode)
	}

	// Deleting again reports the failure instead of silently succeeding.
	del = deleteTransaction(t, ts.URL, fmt.Sprintf("%d", created.ID))
	del.Body.Close()
	if del.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", del.StatusCode)
	}

	del = deleteTransaction(t, ts.URL, "abc")
	del.Body.Close()
	if del.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", del.StatusCode)
	}
}

func seedLedger(t *testing.T, baseURL string) {
	t.Helper()
	for _, body := range []string{
		`{"amount": "100", "category": "Salary", "date": "01/10/2024", "type": "Income"}`,
		`{"amount": "50", "category": "Groceries", "date": "01/15/2024", "type": "Expense"}`,
		`{"amount": "25", "category": "Other", "custom_category": "Books", "date": "02/01/2024", "type": "Expense"}`,
	} {
		resp := postTransaction(t, baseURL, body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed failed with status %d", resp.StatusCode)
		}
	}
}

func TestListTransactionsFilters(t *testing.T) {
	_, ts := newTestServer(t)
	seedLedger(t, ts.URL)

	tests := []struct {
		name      string
		query     string
		wantCount int
	}{
		{"all", "", 3},
		{"by category", "?category=Groceries", 1},
		{"other bucket", "?category=Other", 1},
		{"by type", "?type=Expense", 2},
		{"date range", "?start=01/12/2024&end=01/31/2024", 1},
		{"conjunction", "?type=Expense&start=01/01/2024&end=01/31/2024", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/transactions" + tt.query)
			if err != nil {
				t.Fatalf("GET /transactions: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			got := decodeBody[listResponse](t, resp)
			if len(got.Transactions) != tt.wantCount {
				t.Fatalf("len = %d, want %d", len(got.Transactions), tt.wantCount)
			}
		})
	}
}

func TestListTransactionsPeriodFilter(t *testing.T) {
	_, ts := newTestServer(t)
	seedLedger(t, ts.URL)

	today := time.Now().Format("01/02/2006")
	resp := postTransaction(t, ts.URL, fmt.Sprintf(`{"amount": "5", "category": "Groceries", "date": %q, "type": "Expense"}`, today))
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed failed with status %d", resp.StatusCode)
	}

	for _, period := range []string{"week", "month", "year"} {
		resp, err := http.Get(ts.URL + "/transactions?period=" + period)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		got := decodeBody[listResponse](t, resp)
		if len(got.Transactions) != 1 {
			t.Fatalf("period %s: len = %d, want 1", period, len(got.Transactions))
		}
	}

	resp, err := http.Get(ts.URL + "/transactions?period=decade")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListTransactionsBadFilter(t *testing.T) {
	_, ts := newTestServer(t)

	for _, query := range []string{"?type=Transfer", "?start=2024-01-01", "?end=notadate"} {
		resp, err := http.Get(ts.URL + "/transactions" + query)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("query %q: status = %d, want 400", query, resp.StatusCode)
		}
	}
}

func TestSummary(t *testing.T) {
	_, ts := newTestServer(t)
	seedLedger(t, ts.URL)

	resp, err := http.Get(ts.URL + "/summary")
	if err != nil {
		t.Fatalf("GET /summary: %v", err)
	}
	got := decodeBody[summaryResponse](t, resp)

	if got.Totals.Income != 100 {
		t.Fatalf("Income = %v, want 100", got.Totals.Income)
	}
	if got.Totals.Expense != 75 {
		t.Fatalf("Expense = %v, want 75", got.Totals.Expense)
	}
	if got.Balance != 25 {
		t.Fatalf("Balance = %v, want 25", got.Balance)
	}
	if len(got.IncomeByCategory) != 1 || got.IncomeByCategory[0].Category != "Salary" {
		t.Fatalf("IncomeByCategory = %+v", got.IncomeByCategory)
	}
	if len(got.ExpenseByCategory) != 2 {
		t.Fatalf("ExpenseByCategory = %+v", got.ExpenseByCategory)
	}

	var percentSum float64
	for _, share := range got.ExpenseByCategory {
		percentSum += share.Percent
	}
	if percentSum < 99.99 || percentSum > 100.01 {
		t.Fatalf("expense percentages sum to %v, want 100", percentSum)
	}
}

func TestSummaryCacheInvalidatedOnMutation(t *testing.T) {
	_, ts := newTestServer(t)
	seedLedger(t, ts.URL)

	resp, err := http.Get(ts.URL + "/summary")
	if err != nil {
		t.Fatalf("GET /summary: %v", err)
	}
	before := decodeBody[summaryResponse](t, resp)

	create := postTransaction(t, ts.URL, `{"amount": "100", "category": "Salary", "date": "03/01/2024", "type": "Income"}`)
	create.Body.Close()

	resp, err = http.Get(ts.URL + "/summary")
	if err != nil {
		t.Fatalf("GET /summary: %v", err)
	}
	after := decodeBody[summaryResponse](t, resp)

	if after.Totals.Income != before.Totals.Income+100 {
		t.Fatalf("Income = %v, want %v", after.Totals.Income, before.Totals.Income+100)
	}
}

func TestBalance(t *testing.T) {
	_, ts := newTestServer(t)
	seedLedger(t, ts.URL)

	resp, err := http.Get(ts.URL + "/balance")
	if err != nil {
		t.Fatalf("GET /balance: %v", err)
	}
	got := decodeBody[balanceResponse](t, resp)
	if got.Balance != 25 {
		t.Fatalf("Balance = %v, want 25", got.Balance)
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/balance")
	if err != nil {
		t.Fatalf("GET /balance: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q, want DENY", got)
	}
}
